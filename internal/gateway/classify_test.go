package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The substring heuristic is deliberately pinned down case by case: these
// boundaries are the contract between the gateway and every page.
func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		message string
		want    Disposition
	}{
		{
			name:    "detail page always contextual",
			path:    "/services/abc123",
			message: "Unauthorized: token expired",
			want:    DispositionContextual,
		},
		{
			name:    "detail page business error contextual",
			path:    "/services/abc123",
			message: "cannot book own service",
			want:    DispositionContextual,
		},
		{
			name:    "listing page unauthorized is session invalid",
			path:    "/services",
			message: "Unauthorized: token expired",
			want:    DispositionSessionInvalid,
		},
		{
			name:    "token language is session invalid",
			path:    "/my-bookings",
			message: "invalid token signature",
			want:    DispositionSessionInvalid,
		},
		{
			name:    "forbidden invalid is session invalid",
			path:    "/my-services",
			message: "Forbidden: Invalid credentials",
			want:    DispositionSessionInvalid,
		},
		{
			name:    "bare forbidden is session invalid",
			path:    "/services",
			message: "Forbidden",
			want:    DispositionSessionInvalid,
		},
		{
			name:    "empty message is session invalid",
			path:    "/services",
			message: "",
			want:    DispositionSessionInvalid,
		},
		{
			name:    "business rejection surfaced",
			path:    "/services",
			message: "cannot book own service",
			want:    DispositionBusiness,
		},
		{
			name:    "forbidden with detail is business",
			path:    "/profile",
			message: "Forbidden for this resource",
			want:    DispositionBusiness,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path, tt.message))
		})
	}
}

func TestIsServiceDetailPath(t *testing.T) {
	assert.True(t, IsServiceDetailPath("/services/abc123"))
	assert.True(t, IsServiceDetailPath("/services/abc123/reviews"))
	assert.False(t, IsServiceDetailPath("/services"))
	assert.False(t, IsServiceDetailPath("/my-services"))
	assert.False(t, IsServiceDetailPath("/"))
}

func TestIsAuthPath(t *testing.T) {
	assert.True(t, IsAuthPath("/login"))
	assert.True(t, IsAuthPath("/register"))
	assert.False(t, IsAuthPath("/services"))
}
