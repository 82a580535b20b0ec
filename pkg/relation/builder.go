// Package relation derives the pairwise majority dominance relation from a
// validated preference profile and wraps it with the derived structures the
// stability predicates need: bitset neighbor lookups, transitive closure,
// and the covering (non-redundant) edge set used for order diagrams.
//
// The relation is irreflexive and asymmetric by construction: for any pair
// of alternatives at most one direction can hold a strict majority, and a
// tie yields no edge in either direction. It is not necessarily transitive;
// cyclic majorities (Condorcet cycles) are legal and fully representable.
package relation

import (
	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/preference"
)

// Edge is an ordered dominance pair: From is majority-preferred to To.
// Endpoints are canonical alternative indices.
type Edge struct {
	From int
	To   int
}

// Relation is the majority dominance relation over a profile's universe,
// with the vote margins retained for weighted stability rules.
// It is immutable after Build.
type Relation struct {
	labels  []string
	margins [][]int // margins[x][y] = voters preferring x over y minus the reverse
}

// Build tallies every ordered pair of alternatives across all voters and
// emits a dominance edge x→y iff strictly more voters prefer x to y than
// prefer y to x. Runs in O(n·m²) for n voters and m alternatives.
//
// Build trusts the profile's construction-time validation and has no other
// failure mode than the universe exceeding the bitset representation limit.
func Build(p *preference.Profile) (*Relation, error) {
	m := p.Alternatives()
	if m > MaxAlternatives {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"universe has %d alternatives; the engine represents at most %d", m, MaxAlternatives)
	}

	margins := make([][]int, m)
	for x := range margins {
		margins[x] = make([]int, m)
	}

	n := p.Voters()
	for v := 0; v < n; v++ {
		for x := 0; x < m; x++ {
			for y := x + 1; y < m; y++ {
				if p.Prefers(v, x, y) {
					margins[x][y]++
					margins[y][x]--
				} else {
					margins[x][y]--
					margins[y][x]++
				}
			}
		}
	}

	return &Relation{labels: p.Universe(), margins: margins}, nil
}

// FromMargins reconstructs a relation from serialized labels and margin
// matrix, validating shape and asymmetry. Used when loading a cached
// relation; Build remains the only way to derive one from ballots.
func FromMargins(labels []string, margins [][]int) (*Relation, error) {
	m := len(labels)
	if m == 0 || m > MaxAlternatives {
		return nil, errors.New(errors.ErrCodeInvalidInput, "relation has %d alternatives", m)
	}
	if len(margins) != m {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"margin matrix has %d rows for %d alternatives", len(margins), m)
	}
	for x := range margins {
		if len(margins[x]) != m {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"margin matrix row %d has %d columns for %d alternatives", x, len(margins[x]), m)
		}
	}
	for x := 0; x < m; x++ {
		if margins[x][x] != 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "nonzero self-margin for %q", labels[x])
		}
		for y := x + 1; y < m; y++ {
			if margins[x][y] != -margins[y][x] {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"asymmetry violated between %q and %q", labels[x], labels[y])
			}
		}
	}
	return &Relation{labels: labels, margins: margins}, nil
}

// Len returns the universe size m.
func (r *Relation) Len() int { return len(r.labels) }

// Labels returns the alternative labels in canonical order.
// The returned slice must not be modified.
func (r *Relation) Labels() []string { return r.labels }

// Label returns the label at canonical index i.
func (r *Relation) Label(i int) string { return r.labels[i] }

// Dominates reports whether x is majority-preferred to y.
func (r *Relation) Dominates(x, y int) bool {
	return x != y && r.margins[x][y] > 0
}

// Margin returns the signed vote margin of x over y. Positive means x
// dominates y, zero means indifference, negative means y dominates x.
func (r *Relation) Margin(x, y int) int { return r.margins[x][y] }

// Edges returns all dominance edges in canonical order (by From, then To).
func (r *Relation) Edges() []Edge {
	var edges []Edge
	m := r.Len()
	for x := 0; x < m; x++ {
		for y := 0; y < m; y++ {
			if r.Dominates(x, y) {
				edges = append(edges, Edge{From: x, To: y})
			}
		}
	}
	return edges
}
