// Package stability evaluates named stability predicates over candidate
// subsets of the alternative universe and searches the subset lattice for
// qualifying sets.
//
// Every predicate decomposes into the same three-part contract:
//
//   - an internal rule, shared by all variants: no member of the candidate
//     subset dominates another member
//   - an external rule: every alternative outside the subset is defeated by
//     some member, under a variant-specific defeat notion (direct majority,
//     covering edge, closure chain, or margin-weighted majority)
//   - an optional extra constraint: minimality, or a tolerance for a bounded
//     number of undefeated outside alternatives
//
// New variants are added by registering a Predicate with its own defeat
// notion and constraints; the search engine never changes.
package stability

import (
	"sort"
	"strings"

	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/relation"
)

// ID names a registered stability predicate.
type ID string

// The registered predicate identifiers.
const (
	VanDeemen   ID = "vandeemen"
	Extended    ID = "extended"
	WStable     ID = "wstable"
	Duggan      ID = "duggan"
	MStable     ID = "mstable"
	Generalized ID = "generalized"
)

// DefeatVia names the mechanism by which a member defeats an outside
// alternative, recorded in explanation witnesses.
type DefeatVia string

// Defeat mechanisms.
const (
	ViaDirect   DefeatVia = "direct"   // direct majority edge
	ViaCovering DefeatVia = "covering" // covering-relation edge
	ViaClosure  DefeatVia = "closure"  // chain of majority defeats
	ViaMargin   DefeatVia = "margin"   // majority edge meeting the weight threshold
)

// Params carries the numeric parameters of the parameterized variants.
type Params struct {
	// W is the minimum vote margin for a defeat to count under the w-Stable
	// rule. W = 1 accepts any strict majority.
	W int

	// M is the number of undefeated outside alternatives tolerated by the
	// m-Stable rule. M = 0 collapses to Van Deemen.
	M int
}

// DefaultParams returns the parameter defaults (W=1, M=0).
func DefaultParams() Params { return Params{W: 1, M: 0} }

// defeatFn reports whether some member of s defeats outside alternative y,
// returning the defending member and the mechanism used.
type defeatFn func(g *relation.Graph, s relation.Set, y int, p Params) (defender int, via DefeatVia, ok bool)

// Predicate is a named stability rule. Predicates are stateless and safe
// for concurrent use; obtain them from Lookup or Registered.
type Predicate struct {
	id          ID
	name        string
	description string
	defeat      defeatFn
	tolerance   func(p Params) int // max undefeated outside alternatives
	minimal     bool               // extra constraint: no proper qualifying subset
}

// ID returns the predicate's identifier.
func (pr *Predicate) ID() ID { return pr.id }

// Name returns the predicate's display name.
func (pr *Predicate) Name() string { return pr.name }

// Description returns a one-line description for user-facing output.
func (pr *Predicate) Description() string { return pr.description }

// Minimal reports whether the predicate carries the minimality constraint.
func (pr *Predicate) Minimal() bool { return pr.minimal }

func noTolerance(Params) int { return 0 }

var registry = map[ID]*Predicate{
	VanDeemen: {
		id:          VanDeemen,
		name:        "Van Deemen Stable Set",
		description: "Internally undominated; every outside alternative loses a direct pairwise majority to some member.",
		defeat:      defeatDirect,
		tolerance:   noTolerance,
	},
	Extended: {
		id:          Extended,
		name:        "Extended Stable Set",
		description: "Internally undominated; every outside alternative is reached by a chain of majority defeats starting inside the set.",
		defeat:      defeatClosure,
		tolerance:   noTolerance,
	},
	WStable: {
		id:          WStable,
		name:        "W-Stable Set",
		description: "Internally undominated; every outside alternative loses to some member by at least the weight threshold.",
		defeat:      defeatWeighted,
		tolerance:   noTolerance,
	},
	Duggan: {
		id:          Duggan,
		name:        "Duggan Set",
		description: "Internally undominated and minimal; every outside alternative is defeated through the covering relation.",
		defeat:      defeatCovering,
		tolerance:   noTolerance,
		minimal:     true,
	},
	MStable: {
		id:          MStable,
		name:        "M-Stable Set",
		description: "Internally undominated; all but at most m outside alternatives lose a direct pairwise majority to some member.",
		defeat:      defeatDirect,
		tolerance:   func(p Params) int { return p.M },
	},
	Generalized: {
		id:          Generalized,
		name:        "Generalized Stable Set",
		description: "Internally undominated; every outside alternative is dominated under the transitive closure of the majority relation.",
		defeat:      defeatClosure,
		tolerance:   noTolerance,
	},
}

// Lookup returns the predicate registered under id.
func Lookup(id ID) (*Predicate, error) {
	pr, ok := registry[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidPredicate,
			"unknown predicate %q (known: %s)", id, strings.Join(idStrings(), ", "))
	}
	return pr, nil
}

// ParseID normalizes a user-supplied predicate name and returns its ID.
func ParseID(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[id]; !ok {
		return "", errors.New(errors.ErrCodeInvalidPredicate,
			"unknown predicate %q (known: %s)", s, strings.Join(idStrings(), ", "))
	}
	return id, nil
}

// Registered returns all predicates in deterministic ID order.
func Registered() []*Predicate {
	out := make([]*Predicate, 0, len(registry))
	for _, id := range IDs() {
		out = append(out, registry[id])
	}
	return out
}

// IDs returns the registered identifiers in sorted order.
func IDs() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func idStrings() []string {
	ids := IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func defeatDirect(g *relation.Graph, s relation.Set, y int, _ Params) (int, DefeatVia, bool) {
	beaters := g.DominatedBy(y).Intersect(s)
	if beaters.Empty() {
		return -1, "", false
	}
	return beaters.Min(), ViaDirect, true
}

func defeatCovering(g *relation.Graph, s relation.Set, y int, _ Params) (int, DefeatVia, bool) {
	for _, x := range s.Members() {
		if g.Covers(x).Has(y) {
			return x, ViaCovering, true
		}
	}
	return -1, "", false
}

func defeatClosure(g *relation.Graph, s relation.Set, y int, _ Params) (int, DefeatVia, bool) {
	// Prefer a direct defeat as the witness when one exists.
	if x, via, ok := defeatDirect(g, s, y, Params{}); ok {
		return x, via, ok
	}
	for _, x := range s.Members() {
		if g.Reaches(x, y) {
			return x, ViaClosure, true
		}
	}
	return -1, "", false
}

func defeatWeighted(g *relation.Graph, s relation.Set, y int, p Params) (int, DefeatVia, bool) {
	w := p.W
	if w < 1 {
		w = 1
	}
	for _, x := range s.Members() {
		if g.Margin(x, y) >= w {
			return x, ViaMargin, true
		}
	}
	return -1, "", false
}
