package relation

// Graph is an immutable derived view over a dominance relation: per-node
// neighbor bitsets, the transitive closure, and the covering edge set.
// Everything is precomputed at construction, so all lookups are O(1) and a
// single Graph can be shared read-only across search workers.
type Graph struct {
	rel         *Relation
	dominates   []Set // dominates[x] = alternatives x beats directly
	dominatedBy []Set // dominatedBy[x] = alternatives beating x directly
	reach       []Set // reach[x] = alternatives reachable from x (path length >= 1)
	covering    []Edge
	coverOut    []Set // coverOut[x] = targets of x's covering edges
}

// NewGraph precomputes adjacency, closure, and covering edges for rel.
// Closure is computed by per-node DFS reachability; covering edges by
// closure-preserving redundant-edge elimination (see coveringEdges).
func NewGraph(rel *Relation) *Graph {
	m := rel.Len()
	g := &Graph{
		rel:         rel,
		dominates:   make([]Set, m),
		dominatedBy: make([]Set, m),
		reach:       make([]Set, m),
		coverOut:    make([]Set, m),
	}

	for x := 0; x < m; x++ {
		for y := 0; y < m; y++ {
			if rel.Dominates(x, y) {
				g.dominates[x] = g.dominates[x].With(y)
				g.dominatedBy[y] = g.dominatedBy[y].With(x)
			}
		}
	}

	for x := 0; x < m; x++ {
		g.reach[x] = reachableFrom(g.dominates, x)
	}

	g.covering = coveringEdges(g.dominates, m)
	for _, e := range g.covering {
		g.coverOut[e.From] = g.coverOut[e.From].With(e.To)
	}
	return g
}

// reachableFrom returns the set of nodes reachable from start by a path of
// one or more edges. Start itself is included only when it lies on a cycle.
func reachableFrom(adj []Set, start int) Set {
	var visited Set
	frontier := adj[start]
	for !frontier.Empty() {
		next := frontier.Min()
		frontier = frontier.Without(next)
		if visited.Has(next) {
			continue
		}
		visited = visited.With(next)
		frontier = frontier.Union(adj[next].Minus(visited))
	}
	return visited
}

// coveringEdges removes redundant edges: an edge x→y is discarded when y
// remains reachable from x through the edges kept so far plus the edges not
// yet examined. Scanning in canonical order makes the result deterministic,
// and checking reachability against the current working edge set (rather
// than the original closure) guarantees that the closure of the covering
// set equals the closure of the full relation even when the base relation
// is cyclic. On acyclic relations this coincides with the usual transitive
// reduction used for Hasse-style diagrams.
func coveringEdges(adj []Set, m int) []Edge {
	work := make([]Set, m)
	copy(work, adj)

	var kept []Edge
	for x := 0; x < m; x++ {
		for y := 0; y < m; y++ {
			if !adj[x].Has(y) {
				continue
			}
			work[x] = work[x].Without(y)
			if reachableFrom(work, x).Has(y) {
				continue // alternate path exists, edge is redundant
			}
			work[x] = work[x].With(y)
			kept = append(kept, Edge{From: x, To: y})
		}
	}
	return kept
}

// Relation returns the underlying dominance relation.
func (g *Graph) Relation() *Relation { return g.rel }

// Len returns the universe size m.
func (g *Graph) Len() int { return g.rel.Len() }

// Label returns the label at canonical index i.
func (g *Graph) Label(i int) string { return g.rel.Label(i) }

// Labels returns the alternative labels in canonical order.
func (g *Graph) Labels() []string { return g.rel.Labels() }

// Dominates returns the set of alternatives x directly dominates.
func (g *Graph) Dominates(x int) Set { return g.dominates[x] }

// DominatedBy returns the set of alternatives that directly dominate x.
func (g *Graph) DominatedBy(x int) Set { return g.dominatedBy[x] }

// Reaches reports whether y is reachable from x through one or more
// dominance edges (transitive closure membership).
func (g *Graph) Reaches(x, y int) bool { return g.reach[x].Has(y) }

// Reachable returns the full closure set for x.
func (g *Graph) Reachable(x int) Set { return g.reach[x] }

// Edges returns all dominance edges in canonical order.
func (g *Graph) Edges() []Edge { return g.rel.Edges() }

// CoveringEdges returns the minimal edge set whose transitive closure
// equals the closure of the full relation, in canonical order. This is the
// edge set intended for partial-order diagram display.
func (g *Graph) CoveringEdges() []Edge {
	out := make([]Edge, len(g.covering))
	copy(out, g.covering)
	return out
}

// Covers returns the targets of x's covering edges.
func (g *Graph) Covers(x int) Set { return g.coverOut[x] }

// Margin returns the signed vote margin of x over y.
func (g *Graph) Margin(x, y int) int { return g.rel.Margin(x, y) }

// CondorcetWinner returns the canonical index of the alternative that
// directly dominates every other alternative, if one exists. A relation
// with a Condorcet cycle at the top has no winner.
func (g *Graph) CondorcetWinner() (int, bool) {
	m := g.Len()
	for x := 0; x < m; x++ {
		if g.dominates[x].Count() == m-1 {
			return x, true
		}
	}
	return -1, false
}
