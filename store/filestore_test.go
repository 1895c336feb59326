package store

import (
	"context"
	"os"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFileStore creates a store in a temp directory.
func newFileStore(tb testing.TB, opts ...FileStoreOption) *FileStore {
	tb.Helper()
	st, err := NewFileStore(tb.TempDir(), opts...)
	require.NoError(tb, err, "NewFileStore failed")
	tb.Cleanup(func() { st.Close() })
	return st
}

func TestFileStorePutGet(t *testing.T) {
	t.Parallel()

	st := newFileStore(t)
	data := []byte("hello world")

	dgst, err := st.Put(t.Context(), data)
	require.NoError(t, err)
	assert.Equal(t, digest.FromBytes(data), dgst)

	got, err := st.Get(t.Context(), dgst)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	ok, err := st.Has(t.Context(), dgst)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStorePutIdempotent(t *testing.T) {
	t.Parallel()

	st := newFileStore(t)
	data := []byte("same bytes")

	first, err := st.Put(t.Context(), data)
	require.NoError(t, err)
	second, err := st.Put(t.Context(), data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFileStoreEmptyObject(t *testing.T) {
	t.Parallel()

	st := newFileStore(t)

	dgst, err := st.Put(t.Context(), nil)
	require.NoError(t, err)

	got, err := st.Get(t.Context(), dgst)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStoreGetNotFound(t *testing.T) {
	t.Parallel()

	st := newFileStore(t)

	t.Run("absent digest", func(t *testing.T) {
		t.Parallel()
		_, err := st.Get(t.Context(), digest.FromBytes([]byte("never stored")))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed digest", func(t *testing.T) {
		t.Parallel()
		_, err := st.Get(t.Context(), digest.Digest("garbage"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFileStoreHasAbsent(t *testing.T) {
	t.Parallel()

	st := newFileStore(t)

	ok, err := st.Has(t.Context(), digest.FromBytes([]byte("never stored")))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = st.Has(t.Context(), digest.Digest("garbage"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreCompression(t *testing.T) {
	t.Parallel()

	st := newFileStore(t, WithCompression(true))
	// Compressible payload so the frame is visibly smaller than the input.
	data := make([]byte, 4096)

	dgst, err := st.Put(t.Context(), data)
	require.NoError(t, err)

	t.Run("stored form is a zstd frame", func(t *testing.T) {
		stored, err := os.ReadFile(st.blobPath(dgst))
		require.NoError(t, err)
		require.Greater(t, len(stored), len(zstdMagic))
		assert.Equal(t, zstdMagic, stored[:len(zstdMagic)])
		assert.Less(t, len(stored), len(data))
	})

	t.Run("get decompresses and verifies", func(t *testing.T) {
		got, err := st.Get(t.Context(), dgst)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})
}

func TestFileStoreReadsMixedCompression(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	data := []byte("written without compression")

	plain, err := NewFileStore(root)
	require.NoError(t, err)
	dgst, err := plain.Put(t.Context(), data)
	require.NoError(t, err)
	require.NoError(t, plain.Close())

	compressed, err := NewFileStore(root, WithCompression(true))
	require.NoError(t, err)
	defer compressed.Close()

	got, err := compressed.Get(t.Context(), dgst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFileStorePutRepairsCorruptObject(t *testing.T) {
	t.Parallel()

	st := newFileStore(t)
	data := []byte("pristine")

	dgst, err := st.Put(t.Context(), data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(st.blobPath(dgst), []byte("tampered"), 0o600))

	// Re-putting the same content must leave the store able to serve it.
	again, err := st.Put(t.Context(), data)
	require.NoError(t, err)
	assert.Equal(t, dgst, again)

	got, err := st.Get(t.Context(), dgst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFileStoreDetectsCorruption(t *testing.T) {
	t.Parallel()

	st := newFileStore(t)
	dgst, err := st.Put(t.Context(), []byte("pristine"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(st.blobPath(dgst), []byte("tampered"), 0o600))

	_, err = st.Get(t.Context(), dgst)
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestFileStoreContextCancellation(t *testing.T) {
	t.Parallel()

	st := newFileStore(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := st.Put(ctx, []byte("data"))
	assert.Error(t, err)

	_, err = st.Get(ctx, digest.FromBytes([]byte("data")))
	assert.Error(t, err)
}
