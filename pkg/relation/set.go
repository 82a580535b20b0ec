package relation

import "math/bits"

// MaxAlternatives is the hard representation limit for the alternative
// universe. Candidate subsets are packed into a single uint64, one bit per
// alternative in canonical order. The configurable search cap (see the
// stability package) sits far below this limit; this constant only bounds
// what the data model can represent at all.
const MaxAlternatives = 64

// Set is a subset of the alternative universe, one bit per canonical index.
// The zero value is the empty set.
type Set uint64

// Singleton returns the set containing only index i.
func Singleton(i int) Set { return 1 << uint(i) }

// Full returns the set containing indices 0..m-1.
func Full(m int) Set {
	if m >= MaxAlternatives {
		return ^Set(0)
	}
	return (1 << uint(m)) - 1
}

// Has reports whether index i is a member.
func (s Set) Has(i int) bool { return s&(1<<uint(i)) != 0 }

// With returns s with index i added.
func (s Set) With(i int) Set { return s | 1<<uint(i) }

// Without returns s with index i removed.
func (s Set) Without(i int) Set { return s &^ (1 << uint(i)) }

// Union returns the union of s and t.
func (s Set) Union(t Set) Set { return s | t }

// Intersect returns the intersection of s and t.
func (s Set) Intersect(t Set) Set { return s & t }

// Minus returns the members of s not in t.
func (s Set) Minus(t Set) Set { return s &^ t }

// Contains reports whether every member of t is also in s.
func (s Set) Contains(t Set) bool { return t&^s == 0 }

// Intersects reports whether s and t share any member.
func (s Set) Intersects(t Set) bool { return s&t != 0 }

// Empty reports whether s has no members.
func (s Set) Empty() bool { return s == 0 }

// Count returns the number of members.
func (s Set) Count() int { return bits.OnesCount64(uint64(s)) }

// Members returns the member indices in ascending (canonical) order.
func (s Set) Members() []int {
	out := make([]int, 0, s.Count())
	for rest := s; rest != 0; {
		i := bits.TrailingZeros64(uint64(rest))
		out = append(out, i)
		rest &= rest - 1
	}
	return out
}

// Min returns the smallest member index, or -1 for the empty set.
func (s Set) Min() int {
	if s == 0 {
		return -1
	}
	return bits.TrailingZeros64(uint64(s))
}
