package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checksum struct {
	Sum  string `json:"sum"`
	Size int64  `json:"size"`
}

func TestKV_GetMissing(t *testing.T) {
	s := createTestStore(t)

	var dst checksum
	ok, err := s.Get(context.Background(), K("kiln", "missing"), &dst)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, dst)
}

func TestKV_SetGet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	key := K("kiln", "resource", "posts/a.md", "checksum")

	require.NoError(t, s.Set(ctx, key, checksum{Sum: "abc", Size: 3}))

	var got checksum
	ok, err := s.Get(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, checksum{Sum: "abc", Size: 3}, got)

	require.NoError(t, s.Set(ctx, key, checksum{Sum: "def", Size: 4}))
	_, err = s.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.Equal(t, "def", got.Sum, "Set replaces the previous value")
}

func TestKV_SlashesInSegmentsDoNotCollide(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, K("a/b", "c"), 1))
	require.NoError(t, s.Set(ctx, K("a", "b/c"), 2))

	var one, two int
	_, err := s.Get(ctx, K("a/b", "c"), &one)
	require.NoError(t, err)
	_, err = s.Get(ctx, K("a", "b/c"), &two)
	require.NoError(t, err)
	assert.Equal(t, 1, one)
	assert.Equal(t, 2, two)
}

func TestKV_Delete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	key := K("kiln", "graph")

	require.NoError(t, s.Set(ctx, key, []string{"a"}))
	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting an absent key is fine")

	var got []string
	ok, err := s.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_DeletePrefix(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, K("kiln", "compiler"), "root"))
	require.NoError(t, s.Set(ctx, K("kiln", "compiler", "concat", "a"), "x"))
	require.NoError(t, s.Set(ctx, K("kiln", "compiler", "index", "b"), "y"))
	require.NoError(t, s.Set(ctx, K("kiln", "compilers"), "sibling"))
	require.NoError(t, s.Set(ctx, K("kiln", "graph"), "g"))

	n, err := s.DeletePrefix(ctx, K("kiln", "compiler"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "sibling keys sharing a string prefix survive")
}

func TestKV_MemoryCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithMemoryCache())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, K("k"), "v"))

	// Remove the row behind the cache's back; a cached read still answers.
	_, err = s.db.Exec(`DELETE FROM entries`)
	require.NoError(t, err)

	var got string
	ok, err := s.Get(ctx, K("k"), &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	require.NoError(t, s.Delete(ctx, K("k")))
	ok, err = s.Get(ctx, K("k"), &got)
	require.NoError(t, err)
	assert.False(t, ok, "Delete invalidates the cache")
}

func TestKV_PersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := OpenDir(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, K("kiln", "graph"), map[string][]string{"b": {"a"}}))
	require.NoError(t, s1.Close())

	s2, err := OpenDir(dir)
	require.NoError(t, err)
	defer s2.Close()

	var got map[string][]string
	ok, err := s2.Get(ctx, K("kiln", "graph"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got["b"])
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "kiln/resource/a.md", K("kiln", "resource").Append("a.md").String())
}
