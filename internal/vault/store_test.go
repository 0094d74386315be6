package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault_data.json")
	return NewStore(path, zap.NewNop()), path
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))
}

func TestLoadMissingDocument(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Empty(t, store.Load())
	assert.Zero(t, store.Len())
}

func TestLoadCorruptDocumentYieldsEmptyList(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	path := filepath.Join(t.TempDir(), "vault_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"type":"NOTE","content":"half`), 0o600))

	store := NewStore(path, zap.New(core))
	assert.Empty(t, store.Load())
	assert.Equal(t, 1, logs.FilterMessage("parse vault document").Len())
}

func TestLoadDiscardsPreviousState(t *testing.T) {
	store, path := newTestStore(t)
	_, err := store.Append(Note{Text: "one"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	assert.Empty(t, store.Load())
}

func TestAppendNotePersists(t *testing.T) {
	store, path := newTestStore(t)

	items, err := store.Append(Note{Text: "first"})
	require.NoError(t, err)
	items, err = store.Append(Note{Text: "the secret"})
	require.NoError(t, err)

	require.Len(t, items, 2)
	last := items[len(items)-1]
	assert.Equal(t, KindNote, last.Kind())
	assert.Equal(t, "the secret", last.Label())

	reloaded := NewStore(path, nil).Load()
	assert.Equal(t, items, reloaded)
}

func TestAppendReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)
	items, err := store.Append(Note{Text: "a"})
	require.NoError(t, err)

	items[0] = Note{Text: "tampered"}

	got, err := store.At(0)
	require.NoError(t, err)
	assert.Equal(t, Note{Text: "a"}, got)
}

func TestAppendFailureKeepsList(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	store := NewStore(filepath.Join(blocker, "vault_data.json"), nil)

	items, err := store.Append(Note{Text: "lost"})
	assert.Error(t, err)
	assert.Empty(t, items)
	assert.Zero(t, store.Len())
}

func TestAppendNil(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Append(nil)
	assert.Error(t, err)
}

func TestDeleteShiftsAndRemovesFiles(t *testing.T) {
	store, path := newTestStore(t)
	dir := t.TempDir()
	payload := filepath.Join(dir, "files", "cat.jpg")
	thumb := filepath.Join(dir, "thumbs", "cat.jpg.png")
	touch(t, payload)
	touch(t, thumb)

	for _, item := range []Item{
		Note{Text: "zero"},
		Image{Name: "cat.jpg", Path: payload, Thumbnail: thumb},
		Note{Text: "two"},
		File{Name: "three.txt", Path: filepath.Join(dir, "files", "three.txt")},
	} {
		_, err := store.Append(item)
		require.NoError(t, err)
	}

	items, removed, err := store.Delete(1)
	require.NoError(t, err)

	assert.Equal(t, Image{Name: "cat.jpg", Path: payload, Thumbnail: thumb}, removed)
	assert.Equal(t, []Item{
		Note{Text: "zero"},
		Note{Text: "two"},
		File{Name: "three.txt", Path: filepath.Join(dir, "files", "three.txt")},
	}, items)
	assert.NoFileExists(t, payload)
	assert.NoFileExists(t, thumb)
	assert.Equal(t, items, NewStore(path, nil).Load())
}

func TestDeleteMissingFilesIsSilent(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	path := filepath.Join(t.TempDir(), "vault_data.json")
	store := NewStore(path, zap.New(core))
	_, err := store.Append(Video{Name: "gone.mp4", Path: filepath.Join(t.TempDir(), "gone.mp4")})
	require.NoError(t, err)

	items, _, err := store.Delete(0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, logs.Len())
}

func TestDeleteOutOfRange(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Append(Note{Text: "only"})
	require.NoError(t, err)

	for _, i := range []int{-1, 1, 5} {
		items, removed, err := store.Delete(i)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.Nil(t, removed)
		assert.Len(t, items, 1)
	}
}

func TestAtOutOfRange(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.At(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
