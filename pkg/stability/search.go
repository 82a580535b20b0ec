package stability

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/relation"
)

// Mode selects how much of the subset lattice a search reports.
type Mode string

// Search modes.
const (
	// FirstMinimal stops at the first (smallest) subset size level that
	// contains a qualifying subset and reports every qualifying subset of
	// that size.
	FirstMinimal Mode = "first"

	// AllQualifying reports every qualifying subset of every size.
	AllQualifying Mode = "all"
)

const (
	// DefaultCap is the default maximum universe size for an unforced
	// exhaustive search. 2^20 candidate subsets is the largest space the
	// engine will walk without an explicit opt-in.
	DefaultCap = 20

	// cancelCheckInterval is how many lattice expansions a worker performs
	// between cooperative cancellation checks.
	cancelCheckInterval = 1024

	// DefaultExplainLimit bounds how many failing-subset explanations are
	// retained when explanation collection is enabled.
	DefaultExplainLimit = 1000
)

// Options configures a subset search.
type Options struct {
	// Mode selects first-minimal or all-qualifying reporting.
	// Defaults to FirstMinimal.
	Mode Mode

	// Cap is the maximum universe size for an unforced search.
	// Zero means DefaultCap.
	Cap int

	// Force permits an exhaustive search above the cap. This is an
	// explicitly accepted slow path.
	Force bool

	// Workers is the number of goroutines sharing the search. Zero means
	// runtime.NumCPU(). The worker count never affects the result or its
	// ordering, only the wall time.
	Workers int

	// Params supplies the w and m parameters for the weighted variants.
	Params Params

	// Explain additionally retains explanations for failing subsets
	// (qualifying subsets always get one), up to ExplainLimit.
	Explain bool

	// ExplainLimit bounds retained failing-subset explanations.
	// Zero means DefaultExplainLimit.
	ExplainLimit int
}

func (o *Options) setDefaults() {
	if o.Mode == "" {
		o.Mode = FirstMinimal
	}
	if o.Cap == 0 {
		o.Cap = DefaultCap
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Params.W == 0 {
		o.Params.W = 1
	}
	if o.ExplainLimit == 0 {
		o.ExplainLimit = DefaultExplainLimit
	}
}

// ValidateMode checks a user-supplied mode string.
func ValidateMode(s string) (Mode, error) {
	switch Mode(s) {
	case FirstMinimal, AllQualifying:
		return Mode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown search mode %q (known: first, all)", s)
}

// Stats reports how much of the lattice a search touched.
type Stats struct {
	// Examined counts subsets whose external rule was evaluated.
	Examined int64 `json:"examined"`

	// Pruned counts lattice branches cut because a subset failed the
	// internal rule; none of the supersets in the cut branch were examined.
	Pruned int64 `json:"pruned"`

	// Levels is the number of subset-size levels walked.
	Levels int `json:"levels"`
}

// Result is the outcome of one (predicate, graph) search.
type Result struct {
	Predicate ID   `json:"predicate"`
	Mode      Mode `json:"mode"`

	// Found is false when no subset qualifies. That outcome is legitimate
	// and is not an error.
	Found bool `json:"found"`

	// Qualifying holds each qualifying subset as a canonically ordered
	// label list, ordered by subset size then canonical member order.
	Qualifying [][]string `json:"qualifying"`

	// Explanations is keyed by the comma-joined canonical subset labels.
	// Qualifying subsets always have an entry; failing subsets only when
	// explanation collection was enabled.
	Explanations map[string]*Evaluation `json:"explanations,omitempty"`

	// ExplanationsTruncated is set when the failing-subset explanation
	// limit was reached.
	ExplanationsTruncated bool `json:"explanations_truncated,omitempty"`

	Stats Stats `json:"stats"`
}

// Search enumerates the candidate-subset lattice of g under predicate pr.
//
// Enumeration is breadth-first over subset size: level k is finished before
// level k+1 starts, so FirstMinimal mode stops at the smallest qualifying
// size. Within a level, each worker walks a depth-first worklist of integer
// bitmasks that extends a subset only with higher canonical indices; a
// subset that fails the internal rule prunes its whole superset cone, which
// is sound because a dominating pair inside a subset stays inside every
// superset. Workers share the read-only graph and append into a locked
// collector; the merged results are re-sorted into canonical order, so the
// outcome is identical for any worker count.
//
// Returns ErrCodeSearchSpaceTooLarge when the universe exceeds the cap and
// Force is unset, and ErrCodeCancelled when ctx is cancelled before the
// search completes (partial results are discarded).
func Search(ctx context.Context, g *relation.Graph, pr *Predicate, opts Options) (*Result, error) {
	opts.setDefaults()

	m := g.Len()
	if m > opts.Cap && !opts.Force {
		return nil, errors.New(errors.ErrCodeSearchSpaceTooLarge,
			"universe has %d alternatives (cap %d); pass force to run the exhaustive search anyway",
			m, opts.Cap)
	}

	e := &engine{
		graph:     g,
		pred:      pr,
		opts:      opts,
		conflicts: make([]relation.Set, m),
		explain:   make(map[string]*Evaluation),
	}
	// conflicts[x] = everything x dominates or is dominated by; a subset is
	// internally stable iff no member's conflict set meets the rest.
	for x := 0; x < m; x++ {
		e.conflicts[x] = g.Dominates(x).Union(g.DominatedBy(x))
	}

	result := &Result{Predicate: pr.id, Mode: opts.Mode, Explanations: e.explain}

	for k := 1; k <= m; k++ {
		level, err := e.searchLevel(ctx, k)
		if err != nil {
			return nil, err
		}
		result.Stats.Levels = k
		if len(level) > 0 {
			sort.Slice(level, func(i, j int) bool { return level[i] < level[j] })
			for _, s := range level {
				result.Qualifying = append(result.Qualifying, subsetLabels(g, s))
				key := SubsetKey(g, s)
				if _, ok := e.explain[key]; !ok {
					e.explain[key] = pr.Evaluate(g, s, opts.Params)
				}
			}
			result.Found = true
			if opts.Mode == FirstMinimal {
				break
			}
		}
	}

	result.Stats.Examined = e.examined.Load()
	result.Stats.Pruned = e.pruned.Load()
	result.ExplanationsTruncated = e.truncated.Load()
	if !opts.Explain {
		// Keep only the qualifying entries collected above.
		for key, ev := range e.explain {
			if !ev.Qualifies {
				delete(e.explain, key)
			}
		}
	}
	return result, nil
}

// engine holds the shared read-only state and the concurrency-safe
// collectors for one search.
type engine struct {
	graph     *relation.Graph
	pred      *Predicate
	opts      Options
	conflicts []relation.Set

	examined atomic.Int64
	pruned   atomic.Int64

	mu        sync.Mutex
	explain   map[string]*Evaluation
	truncated atomic.Bool
}

// frame is one worklist entry: a partial subset and the lowest canonical
// index that may still be added to it.
type frame struct {
	mask relation.Set
	next int
	size int
}

// searchLevel walks all internally-stable subsets of size exactly k and
// returns the qualifying ones, unordered. Subtrees are partitioned across
// workers by their root (smallest) member.
func (e *engine) searchLevel(ctx context.Context, k int) ([]relation.Set, error) {
	m := e.graph.Len()
	workers := e.opts.Workers
	if workers > m {
		workers = m
	}

	var (
		mu        sync.Mutex
		found     []relation.Set
		wg        sync.WaitGroup
		cancelled atomic.Bool
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var local []relation.Set
			var steps int
			for root := w; root < m; root += workers {
				if cancelled.Load() {
					return
				}
				local = e.walkSubtree(ctx, root, k, local, &steps, &cancelled)
			}
			if len(local) > 0 {
				mu.Lock()
				found = append(found, local...)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	if cancelled.Load() {
		return nil, errors.Wrap(errors.ErrCodeCancelled, ctx.Err(),
			"search aborted at subset size %d; partial results discarded", k)
	}
	return found, nil
}

// walkSubtree runs the iterative worklist for all size-k subsets whose
// smallest member is root, appending qualifying masks to acc.
func (e *engine) walkSubtree(ctx context.Context, root, k int, acc []relation.Set, steps *int, cancelled *atomic.Bool) []relation.Set {
	m := e.graph.Len()
	stack := []frame{{mask: relation.Singleton(root), next: root + 1, size: 1}}

	for len(stack) > 0 {
		*steps++
		if *steps%cancelCheckInterval == 0 && ctx.Err() != nil {
			cancelled.Store(true)
			return acc
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.size == k {
			if e.evaluate(f.mask) {
				acc = append(acc, f.mask)
			}
			continue
		}

		// Not enough remaining indices to ever reach size k.
		for j := f.next; j <= m-(k-f.size); j++ {
			if e.conflicts[j].Intersects(f.mask) {
				e.pruned.Add(1)
				continue // internal failure is terminal for the whole cone
			}
			stack = append(stack, frame{mask: f.mask.With(j), next: j + 1, size: f.size + 1})
		}
	}
	return acc
}

// evaluate runs the external rule and extra constraint for an
// internally-stable subset, recording explanations as configured.
func (e *engine) evaluate(s relation.Set) bool {
	e.examined.Add(1)

	if !e.opts.Explain {
		return e.pred.Qualifies(e.graph, s, e.opts.Params)
	}

	ev := e.pred.Evaluate(e.graph, s, e.opts.Params)
	e.mu.Lock()
	if ev.Qualifies || len(e.explain) < e.opts.ExplainLimit {
		e.explain[ev.Key()] = ev
	} else if !ev.Qualifies {
		e.truncated.Store(true)
	}
	e.mu.Unlock()
	return ev.Qualifies
}
