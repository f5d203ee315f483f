package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorMode(t *testing.T) {
	mode, err := ParseColorMode("always")
	require.NoError(t, err)
	assert.Equal(t, ColorAlways, mode)

	mode, err = ParseColorMode("never")
	require.NoError(t, err)
	assert.Equal(t, ColorNever, mode)

	_, err = ParseColorMode("rainbow")
	assert.Error(t, err)
}

func TestResolveColors(t *testing.T) {
	assert.True(t, ResolveColors(ColorAlways, false))
	assert.False(t, ResolveColors(ColorNever, true))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ResolveColors(ColorAuto, true))
}

func TestResolveColorsDumbTerminal(t *testing.T) {
	t.Setenv("TERM", "dumb")
	assert.False(t, ResolveColors(ColorAuto, true))
}

func TestRating(t *testing.T) {
	p := NewPrinter(false)
	assert.Equal(t, "no reviews", p.Rating(0))
	assert.Equal(t, "★★★★☆ 4.2", p.Rating(4.2))
	assert.Equal(t, "★★★★★ 5.0", p.Rating(5))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$80.00", Money(80))
	assert.Equal(t, "$19.99", Money(19.99))
}

func TestCLIError(t *testing.T) {
	err := AuthError("token expired")
	assert.Equal(t, "not signed in", err.Error())
	assert.Equal(t, ExitAuthError, err.ExitCode)
	assert.Contains(t, err.Suggestion, "heroctl login")
}
