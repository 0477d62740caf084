package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeFor(t *testing.T, url string, d *HandlerDescriptor) *Route {
	t.Helper()
	p, err := ParsePattern(url, "", 0, false, d, true)
	require.NoError(t, err)
	return newRoute(p, url, *d, false, nil, false)
}

func TestTrieInsertAndWalkLiteral(t *testing.T) {
	var root trieNode
	d := HandlerDescriptor{}
	r := routeFor(t, "/articles/latest", &d)
	root.insert(r)

	got := root.walk([]string{"articles", "latest"})
	require.Len(t, got, 1)
	assert.Same(t, r, got[0])

	assert.Empty(t, root.walk([]string{"articles", "other"}))
}

func TestTrieWalkWildcardAndLiteralBothCandidate(t *testing.T) {
	var root trieNode
	d1 := HandlerDescriptor{}
	d2 := HandlerDescriptor{Names: []string{"x"}}
	literal := routeFor(t, "/a/b", &d1)
	wild := routeFor(t, "/a/$1", &d2)
	root.insert(literal)
	root.insert(wild)

	got := root.walk([]string{"a", "b"})
	require.Len(t, got, 2)
}

func TestTrieHeadOfBucketOrdering(t *testing.T) {
	var root trieNode
	d := HandlerDescriptor{}
	first := routeFor(t, "/x", &d)
	second := routeFor(t, "/x", &d)
	root.insert(first)
	root.insert(second)

	got := root.walk([]string{"x"})
	require.Len(t, got, 2)
	assert.Same(t, second, got[0], "most recently inserted route should be first in its bucket")
	assert.Same(t, first, got[1])
}

func TestTrieRemove(t *testing.T) {
	var root trieNode
	d := HandlerDescriptor{}
	r := routeFor(t, "/x/y", &d)
	root.insert(r)
	require.Len(t, root.walk([]string{"x", "y"}), 1)

	ok := root.remove(r)
	assert.True(t, ok)
	assert.Empty(t, root.walk([]string{"x", "y"}))
}

func TestTrieStarRequiresTrailingSegment(t *testing.T) {
	var root trieNode
	d := HandlerDescriptor{HasVariadicPositional: true}
	r := routeFor(t, "/files/$*", &d)
	root.insert(r)

	// Exactly the fixed prefix, no extra segment: spec's walk only collects
	// star_terminals strictly before consuming a segment, so a star route
	// needs at least one trailing segment to ever be gathered.
	assert.Empty(t, root.walk([]string{"files"}))

	got := root.walk([]string{"files", "a"})
	require.Len(t, got, 1)
	assert.Same(t, r, got[0])
}
