// Package nodelink renders the dominance relation as a node-link diagram.
//
// The diagram boundary of the engine is Graphviz DOT text: either the full
// majority edge set or the reduced covering edge set (the partial-order
// diagram view). SVG output is produced from the DOT via goccy/go-graphviz.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/stacktools/stableset/pkg/relation"
)

// EdgeSet selects which edges a diagram shows.
type EdgeSet string

// Edge selections.
const (
	// EdgesFull draws every majority edge.
	EdgesFull EdgeSet = "full"

	// EdgesCovering draws only the covering (non-redundant) edges, the
	// Hasse-style view of the relation.
	EdgesCovering EdgeSet = "covering"
)

// ValidEdgeSet reports whether s names a known edge selection.
func ValidEdgeSet(s string) bool {
	return EdgeSet(s) == EdgesFull || EdgeSet(s) == EdgesCovering
}

// Options configures diagram rendering.
type Options struct {
	// Edges selects the full or covering edge set. Defaults to EdgesFull.
	Edges EdgeSet

	// Margins labels each edge with its vote margin.
	Margins bool

	// Highlight fills the named nodes (typically a stable set or the
	// Condorcet winner) with an accent color.
	Highlight []string
}

// ToDOT converts a relation graph to Graphviz DOT format.
// Nodes and edges are emitted in canonical order, so identical relations
// always produce identical DOT text.
func ToDOT(g *relation.Graph, opts Options) string {
	edges := g.Edges()
	if opts.Edges == EdgesCovering {
		edges = g.CoveringEdges()
	}
	highlighted := make(map[string]bool, len(opts.Highlight))
	for _, label := range opts.Highlight {
		highlighted[label] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph dominance {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=20, margin=0.1];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, label := range g.Labels() {
		if highlighted[label] {
			fmt.Fprintf(&buf, "  %q [fillcolor=lightblue];\n", label)
		} else {
			fmt.Fprintf(&buf, "  %q;\n", label)
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		if opts.Margins {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n",
				g.Label(e.From), g.Label(e.To), strconv.Itoa(g.Margin(e.From, e.To)))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", g.Label(e.From), g.Label(e.To))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
