package stability

import (
	"strings"

	"github.com/stacktools/stableset/pkg/relation"
)

// Rule names the stage of the three-part contract an evaluation failed at.
type Rule string

// The three rule stages.
const (
	RuleInternal Rule = "internal"
	RuleExternal Rule = "external"
	RuleExtra    Rule = "extra"
)

// Pair is a witnessing dominance edge, by label.
type Pair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Defense records how an outside alternative is defeated by the subset:
// the defeated alternative, the defending member, and the mechanism.
type Defense struct {
	Outside string    `json:"outside"`
	By      string    `json:"by"`
	Via     DefeatVia `json:"via"`
	Margin  int       `json:"margin,omitempty"` // vote margin for direct/margin defeats
}

// Evaluation is the structured justification for one candidate subset under
// one predicate: either the witnesses proving it qualifies, or the specific
// witness for the rule it fails. It supports user-facing explanation text
// without re-deriving the proof.
type Evaluation struct {
	Predicate ID       `json:"predicate"`
	Subset    []string `json:"subset"` // canonical alternative order
	Qualifies bool     `json:"qualifies"`

	// FailedRule is set iff Qualifies is false.
	FailedRule Rule `json:"failed_rule,omitempty"`

	// InternalWitness is the dominating pair inside the subset when the
	// internal rule fails.
	InternalWitness *Pair `json:"internal_witness,omitempty"`

	// Undefeated lists the outside alternatives no member defeats. For a
	// failing external rule these are the witnesses; for a qualifying
	// m-Stable evaluation they are the tolerated leftovers.
	Undefeated []string `json:"undefeated,omitempty"`

	// Defenses records, per defeated outside alternative, the member and
	// mechanism that defeats it.
	Defenses []Defense `json:"defenses,omitempty"`
}

// Key returns the canonical explanation-map key for the evaluated subset.
func (e *Evaluation) Key() string { return strings.Join(e.Subset, ",") }

// SubsetKey renders a candidate subset as its canonical explanation key.
func SubsetKey(g *relation.Graph, s relation.Set) string {
	return strings.Join(subsetLabels(g, s), ",")
}

func subsetLabels(g *relation.Graph, s relation.Set) []string {
	members := s.Members()
	labels := make([]string, len(members))
	for i, x := range members {
		labels[i] = g.Label(x)
	}
	return labels
}

// internalWitness returns the first (canonical order) dominating pair
// inside s, if any. The internal rule holds iff no such pair exists.
func internalWitness(g *relation.Graph, s relation.Set) (from, to int, ok bool) {
	for _, x := range s.Members() {
		if beaten := g.Dominates(x).Intersect(s); !beaten.Empty() {
			return x, beaten.Min(), true
		}
	}
	return -1, -1, false
}

// InternallyStable reports whether no member of s dominates another member.
func InternallyStable(g *relation.Graph, s relation.Set) bool {
	_, _, bad := internalWitness(g, s)
	return !bad
}

// Evaluate runs the full three-part contract for s under pr and returns the
// structured justification. The internal rule is checked first and is
// terminal on failure; the external rule then collects a defense or an
// undefeated witness for every outside alternative; the extra constraint
// (tolerance, then minimality) runs last.
func (pr *Predicate) Evaluate(g *relation.Graph, s relation.Set, p Params) *Evaluation {
	ev := &Evaluation{
		Predicate: pr.id,
		Subset:    subsetLabels(g, s),
	}

	if from, to, bad := internalWitness(g, s); bad {
		ev.FailedRule = RuleInternal
		ev.InternalWitness = &Pair{From: g.Label(from), To: g.Label(to)}
		return ev
	}

	outside := relation.Full(g.Len()).Minus(s)
	for _, y := range outside.Members() {
		x, via, ok := pr.defeat(g, s, y, p)
		if !ok {
			ev.Undefeated = append(ev.Undefeated, g.Label(y))
			continue
		}
		d := Defense{Outside: g.Label(y), By: g.Label(x), Via: via}
		if via == ViaDirect || via == ViaMargin {
			d.Margin = g.Margin(x, y)
		}
		ev.Defenses = append(ev.Defenses, d)
	}

	if len(ev.Undefeated) > pr.tolerance(p) {
		ev.FailedRule = RuleExternal
		return ev
	}

	if pr.minimal && !pr.isMinimal(g, s, p) {
		ev.FailedRule = RuleExtra
		return ev
	}

	ev.Qualifies = true
	return ev
}

// Qualifies reports whether s satisfies all three rules, without building
// the explanation record. Used on the search hot path.
func (pr *Predicate) Qualifies(g *relation.Graph, s relation.Set, p Params) bool {
	return pr.qualifiesInner(g, s, p) && (!pr.minimal || pr.isMinimal(g, s, p))
}

// qualifiesInner checks the internal and external rules only.
func (pr *Predicate) qualifiesInner(g *relation.Graph, s relation.Set, p Params) bool {
	if !InternallyStable(g, s) {
		return false
	}
	undefeated := 0
	tolerated := pr.tolerance(p)
	outside := relation.Full(g.Len()).Minus(s)
	for rest := outside; !rest.Empty(); {
		y := rest.Min()
		rest = rest.Without(y)
		if _, _, ok := pr.defeat(g, s, y, p); !ok {
			undefeated++
			if undefeated > tolerated {
				return false
			}
		}
	}
	return true
}

// isMinimal reports whether no proper nonempty subset of s satisfies the
// internal and external rules. Submasks are enumerated directly, which is
// exponential in |s| but |s| is small for the sets minimality applies to.
func (pr *Predicate) isMinimal(g *relation.Graph, s relation.Set, p Params) bool {
	for t := (s - 1) & s; t > 0; t = (t - 1) & s {
		if pr.qualifiesInner(g, t, p) {
			return false
		}
	}
	return true
}
