package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wisardfhe/tfhe-lut/store"
)

// testStore exercises the contract shared by every Store.
func testStore(t *testing.T, s store.Store) {
	ctx := context.Background()
	data := []byte("encrypted table")

	h, err := s.Put(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, store.ComputeHandle(data), h)

	h2, err := s.Put(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	ok, err := s.Exists(ctx, h)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.NoError(t, store.Verify(h, got))

	empty, err := s.Put(ctx, nil)
	require.NoError(t, err)
	got, err = s.Get(ctx, empty)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Delete(ctx, h))
	ok, err = s.Exists(ctx, h)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, h)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, h), store.ErrNotFound)

	require.NoError(t, s.Delete(ctx, empty))
	assert.NoError(t, s.Close())
}

func TestStore(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		testStore(t, store.NewMemoryStore())
	})

	t.Run("File", func(t *testing.T) {
		s, err := store.NewFileStore(filepath.Join(t.TempDir(), "blobs"))
		require.NoError(t, err)
		testStore(t, s)
	})

	t.Run("Redis", func(t *testing.T) {
		url := os.Getenv("WISARD_TEST_REDIS_URL")
		if url == "" {
			t.Skip("WISARD_TEST_REDIS_URL not set")
		}
		s, err := store.NewRedisStore(context.Background(), url)
		require.NoError(t, err)
		testStore(t, s)
	})
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	data := []byte{1, 2, 3}
	h, err := s.Put(ctx, data)
	require.NoError(t, err)
	data[0] = 9

	got, err := s.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
	got[1] = 9

	got, err = s.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
	assert.Equal(t, 1, s.Len())
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)

	h, err := s.Put(context.Background(), []byte("key"))
	require.NoError(t, err)

	name := h.String()
	assert.FileExists(t, filepath.Join(dir, name[:2], name))

	entries, err := os.ReadDir(filepath.Join(dir, name[:2]))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHandle(t *testing.T) {
	h := store.ComputeHandle([]byte("abc"))
	assert.Len(t, h.String(), 2*store.HandleSize)

	parsed, err := store.ParseHandle(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	for _, s := range []string{"", "abc", h.String()[:62] + "zz", h.String() + "00"} {
		_, err := store.ParseHandle(s)
		assert.ErrorIs(t, err, store.ErrInvalidHandle, "%q", s)
	}

	assert.Error(t, store.Verify(h, []byte("abd")))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := store.Open(ctx, "mem://")
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	dir := t.TempDir()
	s, err = store.Open(ctx, "file://"+filepath.ToSlash(dir))
	require.NoError(t, err)
	require.IsType(t, &store.FileStore{}, s)
	assert.Equal(t, dir, s.(*store.FileStore).Dir())

	s, err = store.Open(ctx, dir)
	require.NoError(t, err)
	assert.IsType(t, &store.FileStore{}, s)

	_, err = store.Open(ctx, "s3://bucket")
	assert.Error(t, err)
	_, err = store.Open(ctx, "redis://%zz")
	assert.Error(t, err)
}
