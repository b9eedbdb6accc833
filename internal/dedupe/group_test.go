package dedupe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexGroups(t *testing.T) {
	ix := NewIndex()
	ix.Add("aaa", "photos/a.jpg")
	ix.Add("bbb", "photos/unique.png")
	ix.Add("aaa", "photos/b.jpg")
	ix.Add("ccc", "photos/c.gif")
	ix.Add("ccc", "photos/d.gif")
	ix.Add("aaa", "photos/e.jpg")

	assert.Equal(t, 3, ix.Len())

	groups := ix.Groups()
	require.Len(t, groups, 2)

	assert.Equal(t, "aaa", groups[0].Fingerprint)
	assert.Equal(t, []string{"photos/a.jpg", "photos/b.jpg", "photos/e.jpg"}, groups[0].Paths)

	assert.Equal(t, "ccc", groups[1].Fingerprint)
	assert.Equal(t, []string{"photos/c.gif", "photos/d.gif"}, groups[1].Paths)
}

func TestIndexNoDuplicates(t *testing.T) {
	ix := NewIndex()
	ix.Add("aaa", "a.jpg")
	ix.Add("bbb", "b.jpg")
	ix.Add("ccc", "c.jpg")

	assert.Empty(t, ix.Groups())
}

func TestIndexEmpty(t *testing.T) {
	assert.Empty(t, NewIndex().Groups())
}

func TestIndexMembershipOrderIndependent(t *testing.T) {
	type pair struct{ fp, path string }
	pairs := []pair{
		{"aaa", "a.jpg"},
		{"aaa", "b.jpg"},
		{"bbb", "c.jpg"},
		{"bbb", "d.jpg"},
		{"bbb", "e.jpg"},
		{"ccc", "f.jpg"},
	}

	membership := func(ps []pair) map[string][]string {
		ix := NewIndex()
		for _, p := range ps {
			ix.Add(p.fp, p.path)
		}
		got := make(map[string][]string)
		for _, g := range ix.Groups() {
			got[g.Fingerprint] = g.Paths
		}
		return got
	}

	want := membership(pairs)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]pair, len(pairs))
		copy(shuffled, pairs)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := membership(shuffled)
		require.Len(t, got, len(want))
		for fp, paths := range want {
			assert.ElementsMatch(t, paths, got[fp], "fingerprint %s", fp)
		}
	}
}

func TestIndexGroupsIdempotent(t *testing.T) {
	ix := NewIndex()
	ix.Add("aaa", "a.jpg")
	ix.Add("aaa", "b.jpg")

	assert.Equal(t, ix.Groups(), ix.Groups())
}
