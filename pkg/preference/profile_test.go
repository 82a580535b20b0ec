package preference

import (
	"strings"
	"testing"

	"github.com/stacktools/stableset/pkg/errors"
)

func TestNewProfileValid(t *testing.T) {
	p, err := NewProfile([]string{"c", "a", "b"}, []Ranking{
		{"a", "b", "c"},
		{"c", "b", "a"},
	})
	if err != nil {
		t.Fatalf("NewProfile() error: %v", err)
	}

	if got := p.Alternatives(); got != 3 {
		t.Errorf("Alternatives() = %d, want 3", got)
	}
	if got := p.Voters(); got != 2 {
		t.Errorf("Voters() = %d, want 2", got)
	}

	// Universe is canonicalized regardless of declaration order.
	universe := p.Universe()
	want := []string{"a", "b", "c"}
	for i, label := range want {
		if universe[i] != label {
			t.Errorf("Universe()[%d] = %q, want %q", i, universe[i], label)
		}
	}
}

func TestNewProfileErrors(t *testing.T) {
	tests := []struct {
		name     string
		universe []string
		rankings []Ranking
		wantCode errors.Code
		wantIn   string
	}{
		{
			name:     "empty universe",
			universe: nil,
			rankings: []Ranking{{"a"}},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "no rankings",
			universe: []string{"a"},
			rankings: nil,
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "duplicate universe label",
			universe: []string{"a", "a"},
			rankings: []Ranking{{"a", "a"}},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "omitted alternative cites voter",
			universe: []string{"a", "b", "c"},
			rankings: []Ranking{{"a", "b", "c"}, {"a", "b"}},
			wantCode: errors.ErrCodeMalformedProfile,
			wantIn:   "voter 1",
		},
		{
			name:     "duplicate alternative cites voter",
			universe: []string{"a", "b"},
			rankings: []Ranking{{"a", "b"}, {"a", "a"}},
			wantCode: errors.ErrCodeMalformedProfile,
			wantIn:   "voter 1",
		},
		{
			name:     "unknown alternative cites voter",
			universe: []string{"a", "b"},
			rankings: []Ranking{{"x", "b"}},
			wantCode: errors.ErrCodeMalformedProfile,
			wantIn:   "voter 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfile(tt.universe, tt.rankings)
			if err == nil {
				t.Fatal("NewProfile() succeeded, want error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("error code = %q, want %q", got, tt.wantCode)
			}
			if tt.wantIn != "" && !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("error %q does not mention %q", err, tt.wantIn)
			}
		})
	}
}

func TestFromRankingsInconsistentUniverse(t *testing.T) {
	// Voter 1 ranks a same-size, duplicate-free but different alternative
	// set: a disagreement about the universe, not a single broken ballot.
	_, err := FromRankings([]Ranking{
		{"a", "b", "c"},
		{"a", "x", "y"},
	})
	if err == nil {
		t.Fatal("FromRankings() succeeded, want error")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInconsistentUniverse {
		t.Errorf("error code = %q, want %q", got, errors.ErrCodeInconsistentUniverse)
	}
	if !strings.Contains(err.Error(), "voter 1") {
		t.Errorf("error %q does not cite voter 1", err)
	}
}

func TestFromRankingsOmissionIsMalformed(t *testing.T) {
	// A short ballot omits an alternative; that stays a malformed profile.
	_, err := FromRankings([]Ranking{
		{"a", "b", "c"},
		{"c", "a"},
	})
	if err == nil {
		t.Fatal("FromRankings() succeeded, want error")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeMalformedProfile {
		t.Errorf("error code = %q, want %q", got, errors.ErrCodeMalformedProfile)
	}
}

func TestPrefers(t *testing.T) {
	p, err := FromRankings([]Ranking{
		{"b", "a", "c"},
		{"c", "b", "a"},
	})
	if err != nil {
		t.Fatalf("FromRankings() error: %v", err)
	}

	a, _ := p.Index("a")
	b, _ := p.Index("b")
	c, _ := p.Index("c")

	if !p.Prefers(0, b, a) {
		t.Error("voter 0 should prefer b over a")
	}
	if p.Prefers(0, c, a) {
		t.Error("voter 0 should not prefer c over a")
	}
	if !p.Prefers(1, c, b) {
		t.Error("voter 1 should prefer c over b")
	}
	if got := p.Position(1, a); got != 2 {
		t.Errorf("Position(1, a) = %d, want 2", got)
	}
}

func TestProfileImmutability(t *testing.T) {
	rankings := []Ranking{{"a", "b"}}
	p, err := FromRankings(rankings)
	if err != nil {
		t.Fatalf("FromRankings() error: %v", err)
	}

	rankings[0][0] = "mutated"
	if got := p.Ranking(0)[0]; got != "a" {
		t.Errorf("Ranking(0)[0] = %q after caller mutation, want %q", got, "a")
	}

	p.Universe()[0] = "mutated"
	if got := p.Label(0); got != "a" {
		t.Errorf("Label(0) = %q after universe copy mutation, want %q", got, "a")
	}
}
