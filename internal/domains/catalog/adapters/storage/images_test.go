package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

// pngHeader is enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestLocalImageStore_SavesSniffedImage(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save(context.Background(), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	path, err := store.Path(name)
	require.NoError(t, err)
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestLocalImageStore_RejectsNonImages(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ports.ErrUnsupportedImage)

	_, err = store.Save(context.Background(), bytes.NewReader(nil))
	assert.ErrorIs(t, err, ports.ErrEmptyImage)

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxImageBytes)...)
	_, err = store.Save(context.Background(), bytes.NewReader(big))
	assert.ErrorIs(t, err, ports.ErrImageTooLarge)
}

func TestLocalImageStore_PathRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("x"), 0o644))

	for _, name := range []string{"", "../secret.txt", ".hidden", "missing.png", "a/b.png"} {
		_, err := store.Path(name)
		assert.ErrorIs(t, err, ports.ErrNotFound, name)
	}
}
