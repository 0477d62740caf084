package route

// trieNode is one node of the registry's prefix tree, keyed by literal
// path components with a single anonymous child absorbing any parameter
// component (spec §3's "Trie node"). Nodes are created lazily and are
// never pruned: the design tolerates a sparse tree in exchange for O(1)
// removal bookkeeping everywhere else.
type trieNode struct {
	children map[string]*trieNode
	wild     *trieNode

	terminals     []*Route
	starTerminals []*Route
}

func newTrieNode() *trieNode {
	return &trieNode{}
}

func (n *trieNode) child(literal string) *trieNode {
	if n.children == nil {
		return nil
	}
	return n.children[literal]
}

func (n *trieNode) childOrCreate(literal string) *trieNode {
	if n.children == nil {
		n.children = make(map[string]*trieNode)
	}
	c, ok := n.children[literal]
	if !ok {
		c = newTrieNode()
		n.children[literal] = c
	}
	return c
}

func (n *trieNode) wildOrCreate() *trieNode {
	if n.wild == nil {
		n.wild = newTrieNode()
	}
	return n.wild
}

// insert walks pattern's path, creating nodes as needed, and appends route
// to the terminal bucket (or star bucket) of the node at the end of the
// walk. New routes are inserted at the head of their bucket so that,
// within one priority class, the most recently registered route wins
// (spec §4.2 "Ordering").
func (n *trieNode) insert(route *Route) {
	node := n
	for _, c := range route.pattern.path {
		if c.kind == componentLiteral {
			node = node.childOrCreate(c.literal)
		} else {
			node = node.wildOrCreate()
		}
	}
	if route.pattern.star {
		node.starTerminals = prepend(node.starTerminals, route)
	} else {
		node.terminals = prepend(node.terminals, route)
	}
}

// remove deletes route from wherever insert placed it. Trie nodes
// themselves are never pruned even if they end up empty (see the type
// doc): a later re-registration down the same path reuses the node.
func (n *trieNode) remove(route *Route) bool {
	node := n
	for _, c := range route.pattern.path {
		if c.kind == componentLiteral {
			node = node.child(c.literal)
		} else {
			node = node.wild
		}
		if node == nil {
			return false
		}
	}
	var bucket *[]*Route
	if route.pattern.star {
		bucket = &node.starTerminals
	} else {
		bucket = &node.terminals
	}
	for i, r := range *bucket {
		if r == route {
			*bucket = append((*bucket)[:i], (*bucket)[i+1:]...)
			return true
		}
	}
	return false
}

func prepend(routes []*Route, r *Route) []*Route {
	routes = append(routes, nil)
	copy(routes[1:], routes)
	routes[0] = r
	return routes
}

// walk performs the trie traversal described in spec §4.3: it follows
// literal and wildcard children in lockstep across the frontier, and at
// each step (before consuming that step's segment) collects the current
// frontier's starTerminals. Grounded directly on pony's get_routes loop:
// star routes are only gathered for depths 0..len(segments)-1, so a "$*"
// route always needs at least one segment beyond its fixed prefix to
// match — the depth equal to the full segment count is never visited
// inside the loop, only after it (and only terminals, not star routes, are
// collected there).
func (n *trieNode) walk(segments []string) []*Route {
	frontier := []*trieNode{n}
	var candidates []*Route

	for _, seg := range segments {
		for _, node := range frontier {
			candidates = append(candidates, node.starTerminals...)
		}

		var next []*trieNode
		for _, node := range frontier {
			if c := node.child(seg); c != nil {
				next = append(next, c)
			}
			if node.wild != nil {
				next = append(next, node.wild)
			}
		}
		frontier = next
	}

	for _, node := range frontier {
		candidates = append(candidates, node.terminals...)
	}
	return candidates
}
