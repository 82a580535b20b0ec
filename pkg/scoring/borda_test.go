package scoring

import (
	"reflect"
	"testing"

	"github.com/stacktools/stableset/pkg/preference"
)

func TestBorda(t *testing.T) {
	p, err := preference.FromRankings([]preference.Ranking{
		{"a", "b", "c"},
		{"a", "c", "b"},
		{"b", "a", "c"},
	})
	if err != nil {
		t.Fatalf("FromRankings() error: %v", err)
	}

	// a: 2+2+1=5, b: 1+0+2=3, c: 0+1+0=1.
	want := []BordaScore{
		{Alternative: "a", Score: 5},
		{Alternative: "b", Score: 3},
		{Alternative: "c", Score: 1},
	}
	if got := Borda(p); !reflect.DeepEqual(got, want) {
		t.Errorf("Borda() = %v, want %v", got, want)
	}
}

func TestBordaTieBreak(t *testing.T) {
	// Opposite ballots tie everything; ties resolve in canonical label order.
	p, err := preference.FromRankings([]preference.Ranking{
		{"c", "b", "a"},
		{"a", "b", "c"},
	})
	if err != nil {
		t.Fatalf("FromRankings() error: %v", err)
	}

	want := []BordaScore{
		{Alternative: "a", Score: 2},
		{Alternative: "b", Score: 2},
		{Alternative: "c", Score: 2},
	}
	if got := Borda(p); !reflect.DeepEqual(got, want) {
		t.Errorf("Borda() = %v, want %v", got, want)
	}
}
