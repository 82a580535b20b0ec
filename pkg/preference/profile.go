// Package preference models ranked-ballot input for stable set analysis.
//
// A Profile is a validated, immutable collection of voter rankings over a
// shared alternative universe. Validation happens exactly once, at
// construction: a profile that exists is a profile whose every ranking is a
// permutation of the universe. All downstream packages (relation building,
// subset search) rely on this invariant and perform no re-validation.
//
// Alternatives are identified by their labels. The universe is kept in
// lexicographic order, which is the canonical order used for all output
// (qualifying sets, edge lists, explanations) to guarantee reproducible
// results across runs.
package preference

import (
	"slices"

	"github.com/stacktools/stableset/pkg/errors"
)

// Ranking is one voter's total order over the universe, best to worst.
type Ranking []string

// Profile is an immutable collection of voter rankings sharing one universe.
//
// The zero value is not usable - use NewProfile or FromRankings.
type Profile struct {
	universe []string       // canonical (lexicographic) order
	index    map[string]int // label -> canonical index
	rankings []Ranking
	pos      [][]int // pos[voter][altIndex] = rank position (0 = best)
}

// NewProfile validates rankings against a declared universe and returns an
// immutable profile.
//
// Every ranking must be a permutation of universe: same length, no duplicate
// labels, no labels outside the universe. Violations return
// ErrCodeMalformedProfile citing the zero-based voter index and the offending
// label. An empty universe or empty ranking list returns ErrCodeInvalidInput.
func NewProfile(universe []string, rankings []Ranking) (*Profile, error) {
	if len(universe) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "universe must not be empty")
	}
	if len(rankings) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "profile must contain at least one ranking")
	}

	canonical := slices.Clone(universe)
	slices.Sort(canonical)
	index := make(map[string]int, len(canonical))
	for i, a := range canonical {
		if a == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "universe contains an empty label")
		}
		if _, dup := index[a]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "universe contains duplicate label %q", a)
		}
		index[a] = i
	}

	p := &Profile{
		universe: canonical,
		index:    index,
		rankings: make([]Ranking, len(rankings)),
		pos:      make([][]int, len(rankings)),
	}

	for v, r := range rankings {
		positions, err := validateRanking(v, r, index, canonical)
		if err != nil {
			return nil, err
		}
		p.rankings[v] = slices.Clone(r)
		p.pos[v] = positions
	}
	return p, nil
}

// FromRankings infers the universe from the first ranking and validates the
// rest against it.
//
// Unlike NewProfile, a later ranking that is internally consistent (no
// duplicates) but ranks a different alternative set returns
// ErrCodeInconsistentUniverse: the voters disagree on what is being ranked,
// which is a different defect from a single voter's malformed ballot.
// A ranking with a duplicate label, or one that merely omits an alternative
// the other voters rank, still returns ErrCodeMalformedProfile.
func FromRankings(rankings []Ranking) (*Profile, error) {
	if len(rankings) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "profile must contain at least one ranking")
	}

	first := rankings[0]
	if len(first) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedProfile, "voter 0: ranking is empty")
	}
	seen := make(map[string]bool, len(first))
	for _, a := range first {
		if a == "" {
			return nil, errors.New(errors.ErrCodeMalformedProfile, "voter 0: ranking contains an empty label")
		}
		if seen[a] {
			return nil, errors.New(errors.ErrCodeMalformedProfile, "voter 0: duplicate alternative %q", a)
		}
		seen[a] = true
	}

	for v := 1; v < len(rankings); v++ {
		if err := checkUniverseAgreement(v, rankings[v], seen, len(first)); err != nil {
			return nil, err
		}
	}
	return NewProfile(first, rankings)
}

// checkUniverseAgreement classifies a ranking's defect relative to the
// inferred universe before full permutation validation runs.
func checkUniverseAgreement(v int, r Ranking, universe map[string]bool, m int) error {
	dup := make(map[string]bool, len(r))
	foreign := 0
	for _, a := range r {
		if dup[a] {
			return errors.New(errors.ErrCodeMalformedProfile, "voter %d: duplicate alternative %q", v, a)
		}
		dup[a] = true
		if !universe[a] {
			foreign++
		}
	}
	// A duplicate-free ranking of the right size that both misses known
	// alternatives and introduces new ones is a genuine disagreement about
	// the universe, not a single broken ballot.
	if foreign > 0 && len(r) == m {
		return errors.New(errors.ErrCodeInconsistentUniverse,
			"voter %d ranks a different alternative set (%d unknown labels)", v, foreign)
	}
	return nil
}

func validateRanking(v int, r Ranking, index map[string]int, universe []string) ([]int, error) {
	positions := make([]int, len(universe))
	for i := range positions {
		positions[i] = -1
	}
	for rank, a := range r {
		i, ok := index[a]
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedProfile,
				"voter %d: alternative %q is not in the universe", v, a)
		}
		if positions[i] != -1 {
			return nil, errors.New(errors.ErrCodeMalformedProfile,
				"voter %d: duplicate alternative %q", v, a)
		}
		positions[i] = rank
	}
	for i, pos := range positions {
		if pos == -1 {
			return nil, errors.New(errors.ErrCodeMalformedProfile,
				"voter %d: ranking omits alternative %q", v, universe[i])
		}
	}
	return positions, nil
}

// Universe returns the alternative labels in canonical (lexicographic) order.
// The returned slice is a copy.
func (p *Profile) Universe() []string { return slices.Clone(p.universe) }

// Alternatives returns the universe size m.
func (p *Profile) Alternatives() int { return len(p.universe) }

// Voters returns the number of rankings n.
func (p *Profile) Voters() int { return len(p.rankings) }

// Ranking returns a copy of voter v's ranking, best to worst.
func (p *Profile) Ranking(v int) Ranking { return slices.Clone(p.rankings[v]) }

// Label returns the alternative label at canonical index i.
func (p *Profile) Label(i int) string { return p.universe[i] }

// Index returns the canonical index of the given label and whether it exists.
func (p *Profile) Index(label string) (int, bool) {
	i, ok := p.index[label]
	return i, ok
}

// Prefers reports whether voter v ranks alternative x (by canonical index)
// strictly above alternative y. Positions were precomputed at construction,
// so this is O(1).
func (p *Profile) Prefers(v, x, y int) bool {
	return p.pos[v][x] < p.pos[v][y]
}

// Position returns voter v's rank position for the alternative at canonical
// index i (0 = most preferred).
func (p *Profile) Position(v, i int) int { return p.pos[v][i] }
