// Package scoring implements positional scoring rules over a preference
// profile. These complement the stability analysis: a Borda ranking gives a
// quick aggregate picture even when the majority relation is cyclic.
package scoring

import "github.com/stacktools/stableset/pkg/preference"

// BordaScore is one alternative's aggregate positional score.
type BordaScore struct {
	Alternative string `json:"alternative"`
	Score       int    `json:"score"`
}

// Borda computes the Borda count for every alternative: each voter awards
// m-1 points to their top choice down to 0 for their last. The result is
// sorted by descending score, ties broken by canonical alternative order,
// so identical profiles always produce identical tables.
func Borda(p *preference.Profile) []BordaScore {
	m := p.Alternatives()
	n := p.Voters()

	scores := make([]BordaScore, m)
	for i := 0; i < m; i++ {
		scores[i].Alternative = p.Label(i)
	}
	for v := 0; v < n; v++ {
		for i := 0; i < m; i++ {
			scores[i].Score += m - 1 - p.Position(v, i)
		}
	}

	// Insertion sort keeps the canonical-order tie-break stable.
	for i := 1; i < m; i++ {
		for j := i; j > 0 && scores[j].Score > scores[j-1].Score; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
	return scores
}
