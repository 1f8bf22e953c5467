package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kiln/internal/item"
)

func TestTable_AddLookup(t *testing.T) {
	tbl := NewTable()
	a := item.ID{Path: "a.md"}
	b := item.ID{Path: "b.md"}

	require.NoError(t, tbl.Add(b, "b.html"))
	require.NoError(t, tbl.Add(a, "a.html"))

	got, ok := tbl.Lookup(a)
	assert.True(t, ok)
	assert.Equal(t, "a.html", got)

	_, ok = tbl.Lookup(item.ID{Path: "c.md"})
	assert.False(t, ok)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []Entry{{ID: b, Path: "b.html"}, {ID: a, Path: "a.html"}}, tbl.Entries())
}

func TestTable_DuplicateRejected(t *testing.T) {
	tbl := NewTable()
	a := item.ID{Path: "a.md"}

	require.NoError(t, tbl.Add(a, "a.html"))
	err := tbl.Add(a, "other.html")
	assert.ErrorContains(t, err, "already recorded")

	got, _ := tbl.Lookup(a)
	assert.Equal(t, "a.html", got, "first entry wins")
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_VersionsAreDistinct(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Add(item.ID{Path: "a.md"}, "a.html"))
	require.NoError(t, tbl.Add(item.ID{Path: "a.md", Version: "raw"}, "a.md"))
	assert.Equal(t, 2, tbl.Len())
}

func TestTable_Owner(t *testing.T) {
	tbl := NewTable()
	a := item.ID{Path: "a.md"}
	require.NoError(t, tbl.Add(a, "index.html"))

	owner, ok := tbl.Owner("index.html")
	assert.True(t, ok)
	assert.Equal(t, a, owner)

	_, ok = tbl.Owner("other.html")
	assert.False(t, ok)
}

func TestTable_EntriesIsACopy(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Add(item.ID{Path: "a.md"}, "a.html"))
	entries := tbl.Entries()
	entries[0].Path = "mutated"
	got, _ := tbl.Lookup(item.ID{Path: "a.md"})
	assert.Equal(t, "a.html", got)
}
