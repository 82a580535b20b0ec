package stability

import (
	"reflect"
	"testing"

	"github.com/stacktools/stableset/pkg/preference"
	"github.com/stacktools/stableset/pkg/relation"
)

func mustLookup(t *testing.T, id ID) *Predicate {
	t.Helper()
	pr, err := Lookup(id)
	if err != nil {
		t.Fatalf("Lookup(%q) error: %v", id, err)
	}
	return pr
}

func TestInternallyStable(t *testing.T) {
	g := cycleGraph(t)

	if !InternallyStable(g, relation.Singleton(0)) {
		t.Error("singleton must be internally stable")
	}
	// Every pair in a 3-cycle contains a dominance edge.
	if InternallyStable(g, relation.Singleton(0).With(1)) {
		t.Error("{x, y} contains x→y and is not internally stable")
	}
}

func TestEvaluateInternalFailure(t *testing.T) {
	g := cycleGraph(t)
	pr := mustLookup(t, VanDeemen)

	ev := pr.Evaluate(g, relation.Singleton(0).With(1), DefaultParams())
	if ev.Qualifies {
		t.Fatal("subset with internal edge should not qualify")
	}
	if ev.FailedRule != RuleInternal {
		t.Errorf("FailedRule = %q, want %q", ev.FailedRule, RuleInternal)
	}
	if ev.InternalWitness == nil || ev.InternalWitness.From != "x" || ev.InternalWitness.To != "y" {
		t.Errorf("InternalWitness = %+v, want x→y", ev.InternalWitness)
	}
}

func TestEvaluateExternalFailure(t *testing.T) {
	g := cycleGraph(t)
	pr := mustLookup(t, VanDeemen)

	// {x} directly defeats y but not z.
	ev := pr.Evaluate(g, relation.Singleton(0), DefaultParams())
	if ev.Qualifies {
		t.Fatal("{x} should fail the direct external rule in a cycle")
	}
	if ev.FailedRule != RuleExternal {
		t.Errorf("FailedRule = %q, want %q", ev.FailedRule, RuleExternal)
	}
	if !reflect.DeepEqual(ev.Undefeated, []string{"z"}) {
		t.Errorf("Undefeated = %v, want [z]", ev.Undefeated)
	}
	if len(ev.Defenses) != 1 || ev.Defenses[0].Outside != "y" || ev.Defenses[0].By != "x" {
		t.Errorf("Defenses = %+v, want x defeats y", ev.Defenses)
	}
	if ev.Defenses[0].Margin != 1 {
		t.Errorf("defense margin = %d, want 1", ev.Defenses[0].Margin)
	}
}

func TestEvaluateQualifying(t *testing.T) {
	g := cycleGraph(t)
	pr := mustLookup(t, Extended)

	// Under closure defeat every singleton dominates the whole cycle.
	ev := pr.Evaluate(g, relation.Singleton(0), DefaultParams())
	if !ev.Qualifies {
		t.Fatalf("{x} should qualify under closure defeat: %+v", ev)
	}
	if ev.FailedRule != "" {
		t.Errorf("FailedRule = %q for a qualifying subset", ev.FailedRule)
	}
	if len(ev.Defenses) != 2 {
		t.Errorf("Defenses = %+v, want one per outside alternative", ev.Defenses)
	}
	if got := ev.Key(); got != "x" {
		t.Errorf("Key() = %q, want %q", got, "x")
	}
}

func TestEvaluateTolerance(t *testing.T) {
	g := cycleGraph(t)
	pr := mustLookup(t, MStable)

	// {x} leaves z undefeated; M=1 tolerates exactly that.
	ev := pr.Evaluate(g, relation.Singleton(0), Params{W: 1, M: 1})
	if !ev.Qualifies {
		t.Fatalf("{x} should qualify with M=1: %+v", ev)
	}
	if !reflect.DeepEqual(ev.Undefeated, []string{"z"}) {
		t.Errorf("Undefeated = %v, want the tolerated [z]", ev.Undefeated)
	}

	if ev := pr.Evaluate(g, relation.Singleton(0), Params{W: 1, M: 0}); ev.Qualifies {
		t.Error("{x} should not qualify with M=0")
	}
}

func TestEvaluateMinimality(t *testing.T) {
	// a and b are tied and both beat c and d directly; no edge is redundant,
	// so all four edges survive as covering edges.
	g := mustGraph(t, []preference.Ranking{
		{"a", "b", "c", "d"},
		{"b", "a", "d", "c"},
	})
	pr := mustLookup(t, Duggan)

	// {a} leaves the tied b undefeated.
	if ev := pr.Evaluate(g, relation.Singleton(0), DefaultParams()); ev.Qualifies {
		t.Error("{a} should fail the external rule, b is undefeated")
	}

	// {a, b} is internally stable (tied pair) and covers both outsiders.
	ev := pr.Evaluate(g, relation.Singleton(0).With(1), DefaultParams())
	if !ev.Qualifies {
		t.Fatalf("{a, b} should be a minimal covering-stable set: %+v", ev)
	}

	// Any superset is rejected by minimality once {a, b} qualifies inner.
	if pr.isMinimal(g, relation.Full(4), DefaultParams()) {
		t.Error("full universe should not be minimal when {a, b} qualifies")
	}
}

func TestSubsetKey(t *testing.T) {
	g := cycleGraph(t)
	if got := SubsetKey(g, relation.Singleton(0).With(2)); got != "x,z" {
		t.Errorf("SubsetKey = %q, want %q", got, "x,z")
	}
}
