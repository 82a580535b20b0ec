package relation

import (
	"reflect"
	"testing"

	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/preference"
)

func mustProfile(t *testing.T, rankings []preference.Ranking) *preference.Profile {
	t.Helper()
	p, err := preference.FromRankings(rankings)
	if err != nil {
		t.Fatalf("FromRankings() error: %v", err)
	}
	return p
}

// cycleProfile yields the classic Condorcet cycle x→y→z→x, all margins 1.
func cycleProfile(t *testing.T) *preference.Profile {
	t.Helper()
	return mustProfile(t, []preference.Ranking{
		{"x", "y", "z"},
		{"y", "z", "x"},
		{"z", "x", "y"},
	})
}

func TestBuildCycle(t *testing.T) {
	rel, err := Build(cycleProfile(t))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// Canonical order: x=0, y=1, z=2.
	if !rel.Dominates(0, 1) || !rel.Dominates(1, 2) || !rel.Dominates(2, 0) {
		t.Error("expected cycle x→y→z→x")
	}
	if got := rel.Margin(0, 1); got != 1 {
		t.Errorf("Margin(x, y) = %d, want 1", got)
	}
	if got := rel.Margin(1, 0); got != -1 {
		t.Errorf("Margin(y, x) = %d, want -1", got)
	}

	want := []Edge{{0, 1}, {1, 2}, {2, 0}}
	if got := rel.Edges(); !reflect.DeepEqual(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
}

func TestBuildIrreflexiveAsymmetric(t *testing.T) {
	rel, err := Build(mustProfile(t, []preference.Ranking{
		{"a", "b", "c", "d"},
		{"d", "a", "b", "c"},
		{"c", "d", "a", "b"},
	}))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	m := rel.Len()
	for x := 0; x < m; x++ {
		if rel.Dominates(x, x) {
			t.Errorf("Dominates(%d, %d) = true, relation must be irreflexive", x, x)
		}
		for y := 0; y < m; y++ {
			if rel.Dominates(x, y) && rel.Dominates(y, x) {
				t.Errorf("both %d→%d and %d→%d hold, relation must be asymmetric", x, y, y, x)
			}
			if rel.Margin(x, y) != -rel.Margin(y, x) {
				t.Errorf("Margin(%d,%d) = %d not antisymmetric to %d", x, y, rel.Margin(x, y), rel.Margin(y, x))
			}
		}
	}
}

func TestBuildTieHasNoEdge(t *testing.T) {
	rel, err := Build(mustProfile(t, []preference.Ranking{
		{"a", "b"},
		{"b", "a"},
	}))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(rel.Edges()) != 0 {
		t.Errorf("tied pair produced edges: %v", rel.Edges())
	}
}

func TestFromMargins(t *testing.T) {
	labels := []string{"a", "b"}

	rel, err := FromMargins(labels, [][]int{{0, 2}, {-2, 0}})
	if err != nil {
		t.Fatalf("FromMargins() error: %v", err)
	}
	if !rel.Dominates(0, 1) {
		t.Error("a should dominate b")
	}

	tests := []struct {
		name    string
		labels  []string
		margins [][]int
	}{
		{"no labels", nil, nil},
		{"row count mismatch", labels, [][]int{{0, 1}}},
		{"column count mismatch", labels, [][]int{{0}, {0, 0}}},
		{"nonzero diagonal", labels, [][]int{{1, 0}, {0, 0}}},
		{"asymmetry violated", labels, [][]int{{0, 2}, {2, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMargins(tt.labels, tt.margins)
			if err == nil {
				t.Fatal("FromMargins() succeeded, want error")
			}
			if got := errors.GetCode(err); got != errors.ErrCodeInvalidInput {
				t.Errorf("error code = %q, want %q", got, errors.ErrCodeInvalidInput)
			}
		})
	}
}
