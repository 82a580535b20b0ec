package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/stacktools/stableset/pkg/cache"
	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/observability"
	"github.com/stacktools/stableset/pkg/preference"
	"github.com/stacktools/stableset/pkg/relation"
	"github.com/stacktools/stableset/pkg/render/nodelink"
	"github.com/stacktools/stableset/pkg/scoring"
	"github.com/stacktools/stableset/pkg/stability"
	"github.com/stacktools/stableset/pkg/stableio"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Stats records per-stage wall time for one run.
type Stats struct {
	LoadTime     time.Duration
	RelationTime time.Duration
	SearchTime   time.Duration
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	RelationHit bool
	ResultHits  map[stability.ID]bool
}

// Result is the outcome of a complete pipeline run.
type Result struct {
	Profile      *preference.Profile
	Graph        *relation.Graph
	RelationHash string
	Report       *stableio.Report
	Artifacts    map[string][]byte // format -> rendered diagram
	Stats        Stats
	CacheInfo    CacheInfo
}

// Analyze runs the complete load → relate → search pipeline, plus diagram
// rendering when formats were requested.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
		CacheInfo: CacheInfo{ResultHits: make(map[stability.ID]bool)},
	}

	// Stage 1: Load
	loadStart := time.Now()
	profile, err := preference.ReadTableFile(opts.ProfilePath, opts.HasHeader)
	if err != nil {
		return nil, err
	}
	result.Profile = profile
	result.Stats.LoadTime = time.Since(loadStart)
	logger.Info("loaded profile",
		"voters", profile.Voters(),
		"alternatives", profile.Alternatives(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Relate
	relStart := time.Now()
	graph, relHash, relHit, err := r.BuildGraphWithCacheInfo(ctx, profile, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = graph
	result.RelationHash = relHash
	result.CacheInfo.RelationHit = relHit
	result.Stats.RelationTime = time.Since(relStart)
	logger.Info("built dominance relation",
		"edges", len(graph.Edges()),
		"covering", len(graph.CoveringEdges()),
		"cached", relHit,
		"duration", result.Stats.RelationTime)

	// Stage 3: Search per predicate
	report := &stableio.Report{
		Voters:       profile.Voters(),
		Alternatives: profile.Alternatives(),
		Graph:        stableio.FromGraph(graph),
		Borda:        scoring.Borda(profile),
	}
	searchStart := time.Now()
	for _, id := range opts.Predicates {
		res, hit, err := r.SearchWithCacheInfo(ctx, graph, relHash, id, opts)
		if err != nil {
			return nil, err
		}
		result.CacheInfo.ResultHits[id] = hit
		report.Results = append(report.Results, res)
		logger.Info("searched",
			"predicate", id,
			"found", res.Found,
			"qualifying", len(res.Qualifying),
			"examined", res.Stats.Examined,
			"cached", hit)
	}
	result.Stats.SearchTime = time.Since(searchStart)
	result.Report = report

	// Stage 4: Render (optional)
	for _, format := range opts.Formats {
		data, _, err := r.RenderWithCacheInfo(ctx, graph, relHash, format, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
	}

	return result, nil
}

// BuildGraphWithCacheInfo derives the relation graph with caching and
// returns the relation's content hash for downstream cache keys.
func (r *Runner) BuildGraphWithCacheInfo(ctx context.Context, p *preference.Profile, opts Options) (*relation.Graph, string, bool, error) {
	profileData, err := stableio.MarshalProfile(p)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "serialize profile")
	}
	profileHash := cache.Hash(profileData)
	cacheKey := r.Keyer.RelationKey(profileHash)

	observability.Analysis().OnRelationStart(ctx, p.Alternatives(), p.Voters())
	start := time.Now()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "relation")
			if rel, err := stableio.UnmarshalRelation(data); err == nil {
				g := relation.NewGraph(rel)
				observability.Analysis().OnRelationComplete(ctx, len(g.Edges()), time.Since(start), nil)
				return g, cache.Hash(data), true, nil
			}
			// Corrupt entry - fall through to recompute.
		} else {
			observability.Cache().OnCacheMiss(ctx, "relation")
		}
	}

	rel, err := relation.Build(p)
	if err != nil {
		observability.Analysis().OnRelationComplete(ctx, 0, time.Since(start), err)
		return nil, "", false, err
	}

	data, err := stableio.MarshalRelation(rel)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "serialize relation")
	}
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLRelation); err == nil {
		observability.Cache().OnCacheSet(ctx, "relation", len(data))
	}

	g := relation.NewGraph(rel)
	observability.Analysis().OnRelationComplete(ctx, len(g.Edges()), time.Since(start), nil)
	return g, cache.Hash(data), false, nil
}

// SearchWithCacheInfo runs one predicate search with caching.
func (r *Runner) SearchWithCacheInfo(ctx context.Context, g *relation.Graph, relHash string, id stability.ID, opts Options) (*stability.Result, bool, error) {
	pred, err := stability.Lookup(id)
	if err != nil {
		return nil, false, err
	}

	searchOpts := opts.searchOptions()
	cacheKey := r.Keyer.ResultKey(relHash, string(id), cache.ResultKeyOpts{
		Mode:    string(searchOpts.Mode),
		W:       searchOpts.Params.W,
		M:       searchOpts.Params.M,
		Explain: searchOpts.Explain,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "result")
			if res, err := stableio.UnmarshalResult(data); err == nil {
				return res, true, nil
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "result")
		}
	}

	observability.Analysis().OnSearchStart(ctx, string(id), g.Len())
	start := time.Now()
	res, err := stability.Search(ctx, g, pred, searchOpts)
	observability.Analysis().OnSearchComplete(ctx, string(id), qualifyingCount(res), examinedCount(res), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := stableio.MarshalResult(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLResult); err == nil {
			observability.Cache().OnCacheSet(ctx, "result", len(data))
		}
	}
	return res, false, nil
}

// RenderWithCacheInfo produces one diagram artifact with caching.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *relation.Graph, relHash, format string, opts Options) ([]byte, bool, error) {
	if !ValidFormats[format] {
		return nil, false, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (known: dot, svg)", format)
	}
	cacheKey := r.Keyer.ArtifactKey(relHash, string(opts.Edges), format)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Edges: opts.Edges, Margins: true})
	var data []byte
	switch format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		svg, err := nodelink.RenderSVG(dot)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		data = svg
	}

	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func qualifyingCount(res *stability.Result) int {
	if res == nil {
		return 0
	}
	return len(res.Qualifying)
}

func examinedCount(res *stability.Result) int64 {
	if res == nil {
		return 0
	}
	return res.Stats.Examined
}
