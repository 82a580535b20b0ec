package stableio

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stacktools/stableset/pkg/preference"
	"github.com/stacktools/stableset/pkg/relation"
	"github.com/stacktools/stableset/pkg/scoring"
	"github.com/stacktools/stableset/pkg/stability"
)

func mustGraph(t *testing.T, rankings []preference.Ranking) (*preference.Profile, *relation.Graph) {
	t.Helper()
	p, err := preference.FromRankings(rankings)
	if err != nil {
		t.Fatalf("FromRankings() error: %v", err)
	}
	rel, err := relation.Build(p)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return p, relation.NewGraph(rel)
}

func TestFromGraph(t *testing.T) {
	_, g := mustGraph(t, []preference.Ranking{
		{"a", "b", "c"},
		{"a", "c", "b"},
	})

	got := FromGraph(g)
	if !reflect.DeepEqual(got.Nodes, []string{"a", "b", "c"}) {
		t.Errorf("Nodes = %v", got.Nodes)
	}
	want := []Edge{{From: "a", To: "b", Margin: 2}, {From: "a", To: "c", Margin: 2}}
	if !reflect.DeepEqual(got.Edges, want) {
		t.Errorf("Edges = %v, want %v", got.Edges, want)
	}
	if got.CondorcetWinner != "a" {
		t.Errorf("CondorcetWinner = %q, want a", got.CondorcetWinner)
	}
}

func TestFromGraphNoWinner(t *testing.T) {
	_, g := mustGraph(t, []preference.Ranking{
		{"x", "y", "z"},
		{"y", "z", "x"},
		{"z", "x", "y"},
	})
	if got := FromGraph(g); got.CondorcetWinner != "" {
		t.Errorf("CondorcetWinner = %q on a cycle, want empty", got.CondorcetWinner)
	}
}

func TestRelationRoundTrip(t *testing.T) {
	_, g := mustGraph(t, []preference.Ranking{
		{"x", "y", "z"},
		{"y", "z", "x"},
		{"z", "x", "y"},
	})
	rel := g.Relation()

	data, err := MarshalRelation(rel)
	if err != nil {
		t.Fatalf("MarshalRelation() error: %v", err)
	}
	back, err := UnmarshalRelation(data)
	if err != nil {
		t.Fatalf("UnmarshalRelation() error: %v", err)
	}

	if !reflect.DeepEqual(back.Labels(), rel.Labels()) {
		t.Errorf("labels = %v, want %v", back.Labels(), rel.Labels())
	}
	m := rel.Len()
	for x := 0; x < m; x++ {
		for y := 0; y < m; y++ {
			if back.Margin(x, y) != rel.Margin(x, y) {
				t.Errorf("Margin(%d,%d) = %d, want %d", x, y, back.Margin(x, y), rel.Margin(x, y))
			}
		}
	}
}

func TestUnmarshalRelationRejectsTampering(t *testing.T) {
	// A cached entry with a broken margin matrix must not produce a relation.
	data := []byte(`{"labels":["a","b"],"margins":[[0,1],[1,0]]}`)
	if _, err := UnmarshalRelation(data); err == nil {
		t.Error("UnmarshalRelation() accepted an asymmetric margin matrix")
	}
}

func TestMarshalProfileDeterministic(t *testing.T) {
	rankings := []preference.Ranking{
		{"b", "a"},
		{"a", "b"},
	}
	p1, _ := mustGraph(t, rankings)
	p2, _ := mustGraph(t, rankings)

	d1, err := MarshalProfile(p1)
	if err != nil {
		t.Fatalf("MarshalProfile() error: %v", err)
	}
	d2, err := MarshalProfile(p2)
	if err != nil {
		t.Fatalf("MarshalProfile() error: %v", err)
	}
	if !bytes.Equal(d1, d2) {
		t.Error("identical profiles produced different canonical bytes")
	}
}

func TestResultRoundTrip(t *testing.T) {
	p, g := mustGraph(t, []preference.Ranking{
		{"a", "b", "c"},
		{"a", "c", "b"},
	})
	pr, err := stability.Lookup(stability.VanDeemen)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	res, err := stability.Search(context.Background(), g, pr, stability.Options{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	data, err := MarshalResult(res)
	if err != nil {
		t.Fatalf("MarshalResult() error: %v", err)
	}
	back, err := UnmarshalResult(data)
	if err != nil {
		t.Fatalf("UnmarshalResult() error: %v", err)
	}
	if !reflect.DeepEqual(back.Qualifying, res.Qualifying) {
		t.Errorf("Qualifying = %v, want %v", back.Qualifying, res.Qualifying)
	}
	if back.Predicate != res.Predicate || back.Found != res.Found {
		t.Errorf("round trip changed result header: %+v", back)
	}

	// Report encoding stays valid JSON end to end.
	report := &Report{
		Voters:       p.Voters(),
		Alternatives: p.Alternatives(),
		Graph:        FromGraph(g),
		Borda:        scoring.Borda(p),
		Results:      []*stability.Result{res},
	}
	var buf bytes.Buffer
	if err := WriteReport(report, &buf); err != nil {
		t.Fatalf("WriteReport() error: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.Voters != 2 || len(decoded.Results) != 1 {
		t.Errorf("decoded report = %+v", decoded)
	}
}
