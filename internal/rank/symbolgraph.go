package rank

import (
	"fmt"

	"github.com/dominikbraun/graph"
)

// SymbolNode is a vertex in the definition/usage graph: one symbol (or
// chunk) with the edges pointing at what it references.
type SymbolNode struct {
	ID string
}

// SymbolGraph tracks definition-to-usage edges so DefinitionProximity can
// score how close two symbols are in the call/reference graph, grounded on
// the teacher's internal/graph/searcher.go (graph.New with a directed
// dominikbraun/graph.Graph keyed by node id, graph.ShortestPath for
// distance).
type SymbolGraph struct {
	g graph.Graph[string, SymbolNode]
}

// NewSymbolGraph creates an empty directed symbol graph.
func NewSymbolGraph() *SymbolGraph {
	return &SymbolGraph{
		g: graph.New(func(n SymbolNode) string { return n.ID }, graph.Directed()),
	}
}

// AddSymbol registers a symbol vertex if it is not already present.
func (s *SymbolGraph) AddSymbol(id string) {
	_ = s.g.AddVertex(SymbolNode{ID: id})
}

// AddReference records that fromID references toID (a call, an import, a
// type usage). Edges to an unregistered vertex are silently dropped, matching
// the teacher's tolerance for edges referencing external packages.
func (s *SymbolGraph) AddReference(fromID, toID string) {
	_ = s.g.AddEdge(fromID, toID)
}

// DefinitionProximity returns a [0,1] score derived from the shortest-path
// distance between fromID and toID: 1.0 at distance 0, decaying toward 0 as
// distance grows, and 0 when no path exists.
func (s *SymbolGraph) DefinitionProximity(fromID, toID string) float64 {
	if fromID == toID {
		return 1.0
	}
	path, err := graph.ShortestPath(s.g, fromID, toID)
	if err != nil || len(path) == 0 {
		return 0
	}
	distance := len(path) - 1
	if distance <= 0 {
		return 1.0
	}
	return clamp01(1.0 / float64(distance+1))
}

// String is a debug helper reporting vertex/edge counts.
func (s *SymbolGraph) String() string {
	order, _ := s.g.Order()
	size, _ := s.g.Size()
	return fmt.Sprintf("SymbolGraph(vertices=%d, edges=%d)", order, size)
}
