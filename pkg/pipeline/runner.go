package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/splitplan/pkg/cache"
	"github.com/matzehuels/splitplan/pkg/observability"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs plan → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	solveStart := time.Now()
	p, planHit, err := r.PlanWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Plan = p
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.PlanHit = planHit
	result.Stats.Outputs = p.Outputs()
	result.Stats.Layers = p.Depth()
	result.Stats.Returns = p.Returns()
	for _, n := range p.Splitters() {
		result.Stats.Splitters += n
	}

	r.Logger.Info("planned splitters",
		"outputs", result.Stats.Outputs,
		"layers", result.Stats.Layers,
		"splitters", result.Stats.Splitters,
		"duration", result.Stats.SolveTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	if h, err := PlanHash(p); err == nil {
		result.PlanHash = h
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PlanWithCacheInfo solves the demand with caching and returns cache hit info.
func (r *Runner) PlanWithCacheInfo(ctx context.Context, opts Options) (*splitter.Plan, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForPlan(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.PlanKey(opts.Demand, opts.PlanKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			p, err := UnmarshalPlan(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "plan")
				return p, true, nil
			}
			// A cached plan that no longer verifies is recomputed.
			opts.Logger.Warn("discarding cached plan", "err", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "plan")

	p, err := r.solve(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := MarshalPlan(p); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLPlan); err == nil {
			observability.Cache().OnCacheSet(ctx, "plan", len(data))
		} else {
			opts.Logger.Debug("cache write failed", "err", err)
		}
	}

	return p, false, nil
}

func (r *Runner) solve(ctx context.Context, opts Options) (*splitter.Plan, error) {
	sum, _ := splitter.Demand(opts.Demand).Sum()
	hooks := observability.Pipeline()
	hooks.OnSolveStart(ctx, len(opts.Demand), sum)

	start := time.Now()
	p, err := splitter.Solve(splitter.Demand(opts.Demand), opts.SolveOptions()...)
	layers := 0
	if p != nil {
		layers = p.Depth()
	}
	hooks.OnSolveComplete(ctx, layers, time.Since(start), err)
	return p, err
}

// Plan is a convenience wrapper that calls PlanWithCacheInfo and discards the cache hit info.
func (r *Runner) Plan(ctx context.Context, opts Options) (*splitter.Plan, error) {
	p, _, err := r.PlanWithCacheInfo(ctx, opts)
	return p, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *splitter.Plan, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	planHash, err := PlanHash(p)
	if err != nil {
		return nil, false, fmt.Errorf("serialize plan for cache key: %w", err)
	}

	artifacts := make(map[string][]byte)
	var missing []string
	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; ok {
			continue
		}
		cacheKey := r.Keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := Render(ctx, p, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		cacheKey := r.Keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, p *splitter.Plan, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, p, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
