package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path, nil)
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, store.Save(ctx, "bearer-abc"))

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bearer-abc", token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_OverwriteKeepsSingleSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "first"))
	require.NoError(t, store.Save(ctx, "second"))

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}

func TestFileStore_ClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileStore(path, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "bearer-abc"))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestFileStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "token")
	store := NewFileStore(path, nil)

	require.NoError(t, store.Save(context.Background(), "bearer-abc"))

	token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bearer-abc", token)
}
