// Package pipeline provides the core analysis pipeline for Stableset.
//
// This package implements the complete load → relate → search → render
// pipeline so the CLI and library consumers share one code path. The stages
// are:
//
//  1. Load: parse and validate the preference profile
//  2. Relate: derive the majority dominance relation and its graph view
//  3. Search: find qualifying subsets for each requested predicate
//  4. Render: produce DOT/SVG diagram artifacts on demand
//
// Each stage can be run independently or as part of the complete pipeline,
// and the relation, search, and render stages are cached by content hash
// since every derivation is deterministic.
package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/render/nodelink"
	"github.com/stacktools/stableset/pkg/stability"
)

// Artifact formats for the diagram boundary.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported diagram formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// Options configures a pipeline run.
type Options struct {
	// ProfilePath is the CSV preference table to analyze.
	ProfilePath string

	// HasHeader indicates the table's first row holds voter names.
	HasHeader bool

	// Predicates are the stability rules to search under. Empty means all
	// registered predicates.
	Predicates []stability.ID

	// Mode selects first-minimal or all-qualifying search.
	Mode stability.Mode

	// Cap bounds the universe size for unforced search; zero means the
	// engine default.
	Cap int

	// Force permits exhaustive search above the cap.
	Force bool

	// Workers is the search worker count; zero lets the engine decide.
	Workers int

	// Params carries the w and m predicate parameters.
	Params stability.Params

	// Explain retains failing-subset explanations in results.
	Explain bool

	// Refresh bypasses cache reads (results are still written).
	Refresh bool

	// Edges and Formats configure diagram artifacts; empty skips rendering.
	Edges   nodelink.EdgeSet
	Formats []string

	// Logger receives stage progress. Nil uses the runner's logger.
	Logger *log.Logger
}

// ValidateAndSetDefaults normalizes the options and rejects invalid ones.
func (o *Options) ValidateAndSetDefaults() error {
	if o.ProfilePath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "profile path is required")
	}
	if o.Mode == "" {
		o.Mode = stability.FirstMinimal
	}
	if o.Mode != stability.FirstMinimal && o.Mode != stability.AllQualifying {
		return errors.New(errors.ErrCodeInvalidMode, "unknown search mode %q", o.Mode)
	}
	if len(o.Predicates) == 0 {
		o.Predicates = stability.IDs()
	}
	for _, id := range o.Predicates {
		if _, err := stability.Lookup(id); err != nil {
			return err
		}
	}
	if o.Edges == "" {
		o.Edges = nodelink.EdgesCovering
	}
	if !nodelink.ValidEdgeSet(string(o.Edges)) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown edge set %q (known: full, covering)", o.Edges)
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (known: dot, svg)", f)
		}
	}
	return nil
}

// searchOptions translates pipeline options into engine options.
func (o *Options) searchOptions() stability.Options {
	return stability.Options{
		Mode:    o.Mode,
		Cap:     o.Cap,
		Force:   o.Force,
		Workers: o.Workers,
		Params:  o.Params,
		Explain: o.Explain,
	}
}
