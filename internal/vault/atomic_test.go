package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("creates new file", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "nested", "doc.json")

		require.NoError(t, writeFileAtomic(filename, []byte("[]"), 0o600))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(got))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "doc.json")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0o600))

		require.NoError(t, writeFileAtomic(filename, []byte("replaced"), 0o600))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "replaced", string(got))
	})

	t.Run("leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, writeFileAtomic(filepath.Join(dir, "doc.json"), []byte("x"), 0o600))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), tempFilePrefix), e.Name())
		}
	})

	t.Run("failed rename keeps target", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "doc.json")
		require.NoError(t, os.Mkdir(target, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(target, "child"), []byte("x"), 0o600))

		err := writeFileAtomic(target, []byte("new"), 0o600)
		assert.Error(t, err)

		info, statErr := os.Stat(target)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	})
}
