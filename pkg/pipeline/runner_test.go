package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/splitplan/pkg/cache"
	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/observability"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

// memCache is an in-memory cache that counts writes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

type countingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	mu             sync.Mutex
	solves, hits   int
	renderFormats  []string
	lastSolveError error
}

func (h *countingHooks) OnSolveComplete(_ context.Context, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.solves++
	h.lastSolveError = err
}

func (h *countingHooks) OnRenderStart(_ context.Context, formats []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renderFormats = append(h.renderFormats, formats...)
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func installHooks(t *testing.T) *countingHooks {
	t.Helper()
	h := &countingHooks{}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	t.Cleanup(observability.Reset)
	return h
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatalf("NewRunner(nil, nil, nil) left nil fields: %+v", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}

func TestExecute(t *testing.T) {
	hooks := installHooks(t)
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	opts := Options{Demand: []int64{54, 18, 24}, Formats: []string{FormatDOT, FormatJSON, FormatText}}
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if res.CacheInfo.PlanHit || res.CacheInfo.RenderHit {
		t.Errorf("first run should miss the cache: %+v", res.CacheInfo)
	}
	if res.Stats.Layers != 4 || res.Stats.Splitters != 4 || res.Stats.Outputs != 3 {
		t.Errorf("Stats = %+v, want 4 layers, 4 splitters, 3 outputs", res.Stats)
	}
	if len(res.PlanHash) != 64 {
		t.Errorf("PlanHash = %q, want sha256 hex", res.PlanHash)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph G") {
		t.Error("dot artifact missing digraph header")
	}
	if !strings.Contains(string(res.Artifacts[FormatText]), "4 layers") {
		t.Errorf("text artifact missing summary:\n%s", res.Artifacts[FormatText])
	}
	if _, err := UnmarshalPlan(res.Artifacts[FormatJSON]); err != nil {
		t.Errorf("json artifact does not import: %v", err)
	}
	if hooks.solves != 1 {
		t.Errorf("solves = %d, want 1", hooks.solves)
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if !again.CacheInfo.PlanHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run should hit the cache: %+v", again.CacheInfo)
	}
	if hooks.solves != 1 {
		t.Errorf("cached run solved again: solves = %d", hooks.solves)
	}
	if again.PlanHash != res.PlanHash {
		t.Error("cached plan hashes differently")
	}
}

func TestPlanRefresh(t *testing.T) {
	hooks := installHooks(t)
	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()

	if _, err := r.Plan(ctx, Options{Demand: []int64{3, 1}}); err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	_, hit, err := r.PlanWithCacheInfo(ctx, Options{Demand: []int64{3, 1}, Refresh: true})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if hit {
		t.Error("Refresh should bypass the cache")
	}
	if hooks.solves != 2 {
		t.Errorf("solves = %d, want 2", hooks.solves)
	}
}

func TestPlanCorruptCacheEntry(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	key := r.Keyer.PlanKey([]int64{2, 1}, cache.PlanKeyOpts{})
	_ = c.Set(ctx, key, []byte(`{"input":[2,1],"layers":[{"arity":2,"total":2,"takes":[1,1]}]}`), 0)

	p, hit, err := r.PlanWithCacheInfo(ctx, Options{Demand: []int64{2, 1}})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if hit {
		t.Error("a plan that fails verification must not be served from cache")
	}
	if got := p.Delivered(); got[0] != 2 || got[1] != 1 {
		t.Errorf("Delivered() = %v, want [2 1]", got)
	}
}

func TestPlanErrors(t *testing.T) {
	hooks := installHooks(t)
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := r.Plan(ctx, Options{Demand: []int64{1, -2}})
	if !errors.Is(err, errors.ErrCodeInvalidDemand) {
		t.Errorf("Plan(negative) = %v, want INVALID_DEMAND", err)
	}
	if hooks.solves != 0 {
		t.Error("invalid demand should be rejected before solving")
	}

	_, err = r.Plan(ctx, Options{Demand: []int64{7, 1}, MaxLayers: 2})
	if !errors.Is(err, errors.ErrCodeNonConvergent) {
		t.Errorf("Plan(max layers) = %v, want NON_CONVERGENT", err)
	}
	if hooks.lastSolveError == nil {
		t.Error("OnSolveComplete should see the solver error")
	}
}

func TestRenderPartialCache(t *testing.T) {
	hooks := installHooks(t)
	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()

	p, err := splitter.Solve(splitter.Demand{5})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	if _, err := r.Render(ctx, p, Options{Formats: []string{FormatDOT}}); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, p, Options{Formats: []string{FormatDOT, FormatJSON}})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if hit {
		t.Error("json was never rendered, so the result cannot be a full hit")
	}
	if len(artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(artifacts))
	}
	want := []string{FormatDOT, FormatJSON}
	if strings.Join(hooks.renderFormats, ",") != strings.Join(want, ",") {
		t.Errorf("rendered formats = %v, want %v (dot only once)", hooks.renderFormats, want)
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	p, _ := splitter.Solve(splitter.Demand{1})
	_, err := Render(context.Background(), p, Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(gif) = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderDetailedKeysDiffer(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()
	p, _ := splitter.Solve(splitter.Demand{3, 1})

	plain, err := r.Render(ctx, p, Options{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	detailed, err := r.Render(ctx, p, Options{Formats: []string{FormatDOT}, Detailed: true})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if string(plain[FormatDOT]) == string(detailed[FormatDOT]) {
		t.Error("detailed rendering was served from the plain cache entry")
	}
}
