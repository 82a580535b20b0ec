// Package stableio serializes the analysis data model as JSON.
//
// It owns the output boundary of the engine: the dominance graph (node
// list, full edge list, covering edge list) for the external diagram
// renderer, the per-predicate results with their explanation records, and
// the canonical profile encoding used for content-addressed cache keys.
// The format is human-readable and round-trips losslessly.
package stableio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/stacktools/stableset/pkg/preference"
	"github.com/stacktools/stableset/pkg/relation"
	"github.com/stacktools/stableset/pkg/scoring"
	"github.com/stacktools/stableset/pkg/stability"
)

// Edge is a labeled dominance edge with its vote margin.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Margin int    `json:"margin,omitempty"`
}

// Graph is the serialized dominance structure: every node, every majority
// edge, and the reduced covering edge set meant for order-diagram display.
type Graph struct {
	Nodes         []string `json:"nodes"`
	Edges         []Edge   `json:"edges"`
	CoveringEdges []Edge   `json:"covering_edges"`

	// CondorcetWinner is set when one alternative beats all others.
	CondorcetWinner string `json:"condorcet_winner,omitempty"`
}

// FromGraph converts a relation graph to its serialized form.
// All lists are in canonical order.
func FromGraph(g *relation.Graph) Graph {
	out := Graph{Nodes: g.Labels()}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{
			From:   g.Label(e.From),
			To:     g.Label(e.To),
			Margin: g.Margin(e.From, e.To),
		})
	}
	for _, e := range g.CoveringEdges() {
		out.CoveringEdges = append(out.CoveringEdges, Edge{
			From:   g.Label(e.From),
			To:     g.Label(e.To),
			Margin: g.Margin(e.From, e.To),
		})
	}
	if w, ok := g.CondorcetWinner(); ok {
		out.CondorcetWinner = g.Label(w)
	}
	return out
}

// WriteGraph encodes the graph as indented JSON to w.
func WriteGraph(g *relation.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportGraph writes the graph to a JSON file at path.
func ExportGraph(g *relation.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// serializedRelation is the cache encoding of a dominance relation.
type serializedRelation struct {
	Labels  []string `json:"labels"`
	Margins [][]int  `json:"margins"`
}

// MarshalRelation encodes a relation for caching.
func MarshalRelation(r *relation.Relation) ([]byte, error) {
	m := r.Len()
	sr := serializedRelation{Labels: r.Labels(), Margins: make([][]int, m)}
	for x := 0; x < m; x++ {
		sr.Margins[x] = make([]int, m)
		for y := 0; y < m; y++ {
			sr.Margins[x][y] = r.Margin(x, y)
		}
	}
	return json.Marshal(sr)
}

// UnmarshalRelation decodes a cached relation, re-validating its shape.
func UnmarshalRelation(data []byte) (*relation.Relation, error) {
	var sr serializedRelation
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("decode relation: %w", err)
	}
	return relation.FromMargins(sr.Labels, sr.Margins)
}

// MarshalProfile produces the canonical profile encoding used for cache
// keys: universe in canonical order, rankings in voter order. Two profiles
// with identical ballots always produce identical bytes.
func MarshalProfile(p *preference.Profile) ([]byte, error) {
	type serialized struct {
		Universe []string             `json:"universe"`
		Rankings []preference.Ranking `json:"rankings"`
	}
	s := serialized{Universe: p.Universe()}
	for v := 0; v < p.Voters(); v++ {
		s.Rankings = append(s.Rankings, p.Ranking(v))
	}
	return json.Marshal(s)
}

// Report bundles everything one analysis run produces.
type Report struct {
	Voters       int                  `json:"voters"`
	Alternatives int                  `json:"alternatives"`
	Graph        Graph                `json:"graph"`
	Borda        []scoring.BordaScore `json:"borda,omitempty"`
	Results      []*stability.Result  `json:"results"`
}

// WriteReport encodes a full analysis report as indented JSON to w.
func WriteReport(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalResult encodes a search result for caching.
func MarshalResult(r *stability.Result) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalResult decodes a cached search result.
func UnmarshalResult(data []byte) (*stability.Result, error) {
	var r stability.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}
