// Package contextkey implements the hierarchical ContextKey tree spec.md
// §3 describes: a named-entry mapping whose nodes form a tree, where child
// lookups fall through to ancestors. Grounded on spec.md §9's REDESIGN
// FLAGS note: "cyclic graphs appear only in the context-key tree... an
// arena of nodes keyed by integer id with parent ids, never direct owning
// back-pointers" — an arena avoids Go's lack of a GC-friendly cyclic
// back-pointer idiom entirely, which is why this package carries no direct
// analog in the teacher repo (nothing in it needed a parent-linked tree).
package contextkey

import "errors"

// ErrRootDisposal is returned when callers attempt to dispose the root node.
var ErrRootDisposal = errors.New("contextkey: root node cannot be disposed")

// ErrOutstandingLookups is returned when disposing a node that still has
// outstanding lookups.
var ErrOutstandingLookups = errors.New("contextkey: node has outstanding lookups")

// ErrNodeNotFound is returned when an id does not name a live node.
var ErrNodeNotFound = errors.New("contextkey: node not found")

type node struct {
	id       int
	parent   int // -1 for the root
	values   map[string]any
	lookups  int
	disposed bool
}

// Tree is the arena: nodes keyed by integer id, with parent ids rather than
// direct back-pointers. The root (id 0) always exists and can never be
// disposed.
type Tree struct {
	nodes  map[int]*node
	nextID int
}

// NewTree creates a Tree with a single root node.
func NewTree() *Tree {
	t := &Tree{nodes: make(map[int]*node), nextID: 1}
	t.nodes[0] = &node{id: 0, parent: -1, values: make(map[string]any)}
	return t
}

// Root returns the root node's id.
func (t *Tree) Root() int { return 0 }

// CreateChild creates a new node as a child of parentID and returns its id.
func (t *Tree) CreateChild(parentID int) (int, error) {
	if _, ok := t.liveNode(parentID); !ok {
		return 0, ErrNodeNotFound
	}
	id := t.nextID
	t.nextID++
	t.nodes[id] = &node{id: id, parent: parentID, values: make(map[string]any)}
	return id, nil
}

func (t *Tree) liveNode(id int) (*node, bool) {
	n, ok := t.nodes[id]
	if !ok || n.disposed {
		return nil, false
	}
	return n, true
}

// Set stores a named value directly on nodeID.
func (t *Tree) Set(nodeID int, key string, value any) error {
	n, ok := t.liveNode(nodeID)
	if !ok {
		return ErrNodeNotFound
	}
	n.values[key] = value
	return nil
}

// Get looks up key starting at nodeID and falling through to ancestors
// when not found locally, returning the value and whether it was found
// anywhere in the chain. Every Get call between a BeginLookup/EndLookup
// pair is tracked via the outstanding-lookup counter that guards disposal;
// callers doing a single point lookup can ignore that bookkeeping by using
// Lookup instead, which brackets the counter automatically.
func (t *Tree) Get(nodeID int, key string) (any, bool) {
	for id := nodeID; id != -1; {
		n, ok := t.liveNode(id)
		if !ok {
			return nil, false
		}
		if v, found := n.values[key]; found {
			return v, true
		}
		id = n.parent
	}
	return nil, false
}

// CollectAllValues merges nodeID's values with every ancestor's into a
// single map, child entries winning over ancestor entries for the same key
// (spec.md §8's context-hierarchy scenario: a child that sets childKey and
// overrides rootKey yields both in one snapshot). The walk starts at the
// root and applies each node's values in turn so closer-to-nodeID entries
// are applied last and take precedence.
func (t *Tree) CollectAllValues(nodeID int) (map[string]any, error) {
	if _, ok := t.liveNode(nodeID); !ok {
		return nil, ErrNodeNotFound
	}

	var chain []int
	for id := nodeID; id != -1; {
		n, ok := t.liveNode(id)
		if !ok {
			break
		}
		chain = append(chain, id)
		id = n.parent
	}

	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		n := t.nodes[chain[i]]
		for k, v := range n.values {
			out[k] = v
		}
	}
	return out, nil
}

// Lookup performs Get while marking nodeID as having an outstanding lookup
// for the duration of the call, so a concurrent Dispose attempt on nodeID
// observes it as busy. Since the engine's scheduling model is single-
// threaded cooperative (spec.md §5), this only matters across suspension
// points — callers that hold a Lookup across an await must call it via
// BeginLookup/EndLookup instead.
func (t *Tree) Lookup(nodeID int, key string) (any, bool) {
	t.BeginLookup(nodeID)
	defer t.EndLookup(nodeID)
	return t.Get(nodeID, key)
}

// BeginLookup marks nodeID as having one more outstanding lookup.
func (t *Tree) BeginLookup(nodeID int) {
	if n, ok := t.liveNode(nodeID); ok {
		n.lookups++
	}
}

// EndLookup releases one outstanding lookup on nodeID.
func (t *Tree) EndLookup(nodeID int) {
	if n, ok := t.liveNode(nodeID); ok && n.lookups > 0 {
		n.lookups--
	}
}

// Dispose removes a non-root node. It fails if nodeID is the root, or if
// the node has outstanding lookups, per spec.md §3's disposal rules.
// Disposing a node also recursively disposes its children, since a
// disposed node's children would otherwise hold dangling parent ids.
func (t *Tree) Dispose(nodeID int) error {
	if nodeID == t.Root() {
		return ErrRootDisposal
	}
	n, ok := t.liveNode(nodeID)
	if !ok {
		return ErrNodeNotFound
	}
	if n.lookups > 0 {
		return ErrOutstandingLookups
	}

	for _, child := range t.children(nodeID) {
		if err := t.Dispose(child); err != nil {
			return err
		}
	}

	n.disposed = true
	delete(t.nodes, nodeID)
	return nil
}

func (t *Tree) children(parentID int) []int {
	var out []int
	for id, n := range t.nodes {
		if !n.disposed && n.parent == parentID {
			out = append(out, id)
		}
	}
	return out
}
