package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalFileStore(dir, "http://localhost:5000/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, "images/a.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/images/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "images", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "images/a.png"))
	require.NoError(t, store.Delete(ctx, "images/a.png"), "deleting twice is fine")
	_, err = os.Stat(filepath.Join(dir, "images", "a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir(), "http://localhost:5000")
	require.NoError(t, err)
	_, err = store.Save(context.Background(), "../escape.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}
