package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/kiln/internal/analyzer"
	"github.com/roach88/kiln/internal/compiler"
	"github.com/roach88/kiln/internal/graph"
	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/logging"
	"github.com/roach88/kiln/internal/resource"
	"github.com/roach88/kiln/internal/route"
	"github.com/roach88/kiln/internal/store"
)

// Config is the resolved configuration of a run.
type Config struct {
	// Destination is the directory outputs are written to.
	Destination string

	// StoreDir holds the persistent store.
	StoreDir string

	// ProviderDir is the directory resources are read from.
	ProviderDir string

	// InMemoryCache keeps store values in memory as well.
	InMemoryCache bool

	// Ignore filters provider paths. Nil keeps everything.
	Ignore resource.IgnoreFunc
}

// PopulateFunc is the population step: it lists the rules of a run.
type PopulateFunc func(ctx context.Context, p *resource.Provider) ([]compiler.Rule, error)

// Engine runs builds for one site.
type Engine struct {
	cfg      Config
	populate PopulateFunc
	logger   *logging.Logger
	runIDs   RunIDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the run logger. Default: discard.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRunIDGenerator sets the run ID source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) { e.runIDs = g }
}

// New creates an engine.
func New(cfg Config, populate PopulateFunc, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		populate: populate,
		logger:   logging.Discard(),
		runIDs:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// session is the state of one run.
type session struct {
	st       *store.Store
	provider *resource.Provider
	reg      *compiler.Registry
	pop      *item.Population
	graph    *graph.Graph[item.ID]
	old      *graph.Graph[item.ID]
	first    bool
	modified map[item.ID]bool
}

func (s *session) isModified(id item.ID) bool {
	return s.first || s.modified[id]
}

// Run performs one incremental build.
//
// On failure the returned error is a *RunError. Files written before the
// failure stay written.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	runID := e.runIDs.Generate()
	log := logging.Wrap(e.logger.With("run", runID))

	log.Section("initialising")
	st, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	// A failed run that never touched the store leaves the previous
	// baseline usable; one that did forces a first run.
	last, hadLast, err := st.LastStatefulRun(ctx)
	if err != nil {
		return nil, newIOError("read run ledger", item.ID{}, err)
	}
	if err := st.BeginRun(ctx, runID); err != nil {
		return nil, newIOError("record run", item.ID{}, err)
	}

	report, err := e.run(ctx, log, st, runID, !hadLast || last.Status != store.RunSucceeded)

	rec := store.RunRecord{ID: runID, Status: store.RunSucceeded}
	if report != nil {
		rec.Items = report.Items
		rec.Written = len(report.Written)
	}
	if err != nil {
		rec.Status = store.RunFailed
		rec.Error = err.Error()
		log.Error("run failed", "error", err)
	}
	// Record the outcome even when the run was cancelled.
	if ferr := st.FinishRun(context.WithoutCancel(ctx), rec); ferr != nil && err == nil {
		return nil, newIOError("record run", item.ID{}, ferr)
	}
	if err != nil {
		return nil, err
	}
	log.Section("done", "items", report.Items, "written", len(report.Written))
	return report, nil
}

func (e *Engine) openStore() (*store.Store, error) {
	var opts []store.Option
	if e.cfg.InMemoryCache {
		opts = append(opts, store.WithMemoryCache())
	}
	st, err := store.OpenDir(e.cfg.StoreDir, opts...)
	if err != nil {
		return nil, newIOError("open store", item.ID{}, err)
	}
	return st, nil
}

func (e *Engine) load(ctx context.Context) (*resource.Provider, *compiler.Registry, error) {
	provider, err := resource.New(e.cfg.ProviderDir, e.cfg.Ignore)
	if err != nil {
		return nil, nil, newIOError("open provider", item.ID{}, err)
	}

	rules, err := e.populate(ctx, provider)
	if err != nil {
		return nil, nil, &RunError{Code: ErrCodeIOFailed, Message: "population step failed", Err: err}
	}
	reg, err := compiler.NewRegistry(rules...)
	if err != nil {
		return nil, nil, registryError(err)
	}
	return provider, reg, nil
}

func registryError(err error) error {
	var dup *compiler.DuplicateError
	if errors.As(err, &dup) {
		return &RunError{Code: ErrCodeDuplicateItem, Message: "item registered twice", ID: dup.ID}
	}
	return &RunError{Code: ErrCodeIOFailed, Message: "invalid rule", Err: err}
}

func (e *Engine) run(ctx context.Context, log *logging.Logger, st *store.Store, runID string, first bool) (*Report, error) {
	provider, reg, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	s := &session{
		st:       st,
		provider: provider,
		reg:      reg,
		pop:      reg.Population(),
		first:    first,
		modified: make(map[item.ID]bool),
	}
	log.Report("population", "items", s.pop.Len(), "resources", len(provider.List()), "first_run", first)

	log.Section("checking dependencies")
	old, found, err := loadGraph(ctx, st)
	if err != nil {
		return nil, newIOError("load graph", item.ID{}, err)
	}
	if !found || first {
		s.first = true
		old = graph.Empty[item.ID]()
	}
	s.old = old

	s.graph, err = buildGraph(reg)
	if err != nil {
		return nil, err
	}
	if cycle := s.graph.FindCycle(); cycle != nil {
		err := newCycleError(cycle)
		log.Error("dependency cycle", "cycle", FormatCycle(cycle))
		return nil, err
	}
	if err := st.MarkTouched(ctx, runID); err != nil {
		return nil, newIOError("record run", item.ID{}, err)
	}
	if s.first {
		for _, prefix := range []store.Key{compiler.OutputPrefix, compiler.CachePrefix} {
			n, err := st.DeletePrefix(ctx, prefix)
			if err != nil {
				return nil, newIOError("reset store", item.ID{}, err)
			}
			log.Report("dropped cached entries", "prefix", prefix.String(), "count", n)
		}
	}
	if err := saveGraph(ctx, st, s.graph); err != nil {
		return nil, newIOError("store graph", item.ID{}, err)
	}

	for _, entry := range s.pop.Entries() {
		r, ok := entry.Item.Resource()
		if !ok {
			continue
		}
		m, err := provider.Modified(ctx, st, r)
		if err != nil {
			return nil, newIOError("check resource", entry.Item.ID(), err)
		}
		s.modified[entry.Item.ID()] = m
	}

	analysis, err := logging.Timed(log, "analysed dependencies", func() (*analyzer.Analysis[item.ID], error) {
		return analyzer.Analyze(s.old, s.graph, s.isModified)
	})
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: runID, FirstRun: s.first}
	for _, id := range s.pop.IDs() {
		if s.isModified(id) {
			report.Modified = append(report.Modified, id)
		}
	}

	log.Section("compiling")
	x := &executor{
		destination: e.cfg.Destination,
		store:       st,
		provider:    provider,
		routes:      route.NewTable(),
		clock:       NewClock(),
		logger:      log,
	}
	if err := e.fold(ctx, s, x, analysis, report); err != nil {
		return nil, err
	}
	log.Report("compiled", "steps", x.clock.Current(), "written", len(x.written))

	report.Items = s.reg.Len()
	report.Routes = x.routes.Entries()
	report.Written = x.written
	return report, nil
}

// fold executes pending items left to right. A Meta result extends the
// registry and graph, and the items not executed yet are re-ordered.
func (e *Engine) fold(ctx context.Context, s *session, x *executor, analysis *analyzer.Analysis[item.ID], report *Report) error {
	pending := analysis.Order
	done := make(map[item.ID]bool, len(pending))
	report.Stale = analysis.Stale()

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return &RunError{Code: ErrCodeCancelled, Message: "run cancelled", Err: err}
		}
		id := pending[0]
		pending = pending[1:]

		rule, _ := s.reg.Lookup(id)
		env := &compiler.Env{
			Item:       rule.Item,
			Data:       rule.Data,
			Population: s.pop,
			Provider:   s.provider,
			Store:      s.st,
			Routes:     x.routes,
			Modified:   s.isModified,
			Stale:      analysis.IsStale,
			Logger:     x.logger,
		}
		res, step, err := x.execute(ctx, rule, env)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return &RunError{Code: ErrCodeCancelled, Message: "run cancelled", ID: id, Err: cerr}
			}
			return err
		}
		done[id] = true
		report.Order = append(report.Order, id)
		report.Steps = append(report.Steps, step)

		if res.Kind != compiler.KindMeta || len(res.Rules) == 0 {
			continue
		}
		analysis, err = e.extend(ctx, s, res.Rules)
		if err != nil {
			return err
		}
		report.Stale = analysis.Stale()
		remaining := s.graph.Subgraph(func(n item.ID) bool { return !done[n] })
		pending, _ = remaining.TopologicalOrder()
	}
	return nil
}

// extend registers rules produced by a Meta result. Dependency lists of
// rules already registered are kept as they were computed, so items that
// already ran never gain a dependency that runs after them.
func (e *Engine) extend(ctx context.Context, s *session, rules []compiler.Rule) (*analyzer.Analysis[item.ID], error) {
	if err := s.reg.Add(rules...); err != nil {
		return nil, registryError(err)
	}
	s.pop = s.reg.Population()

	added, err := adjacency(rules, s.pop)
	if err != nil {
		return nil, err
	}
	g, err := graph.FromEdges(append(s.graph.Edges(), added...))
	if err != nil {
		return nil, &RunError{Code: ErrCodeDuplicateItem, Message: "extend graph", Err: err}
	}
	if cycle := g.FindCycle(); cycle != nil {
		return nil, newCycleError(cycle)
	}
	s.graph = g
	if err := saveGraph(ctx, s.st, g); err != nil {
		return nil, newIOError("store graph", item.ID{}, err)
	}

	analysis, err := analyzer.Analyze(s.old, s.graph, s.isModified)
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// Check builds the dependency graph without executing anything or touching
// the store. It reports every cycle, or the execution order.
func (e *Engine) Check(ctx context.Context) (*Plan, error) {
	_, reg, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	g, err := buildGraph(reg)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Items: reg.Len()}
	if cycles := g.Cycles(); len(cycles) > 0 {
		plan.Cycles = cycles
		return plan, nil
	}
	plan.Order, _ = g.TopologicalOrder()
	return plan, nil
}

// Clean removes the destination and store directories. It refuses to
// remove a directory that is, or holds, the provider directory.
func Clean(cfg Config) error {
	for _, dir := range []string{cfg.Destination, cfg.StoreDir} {
		if dir == "" {
			continue
		}
		if cfg.ProviderDir != "" && within(dir, cfg.ProviderDir) {
			return fmt.Errorf("clean %s: contains the provider directory %s", dir, cfg.ProviderDir)
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}
	return nil
}

// within reports whether target is base or lies below it.
func within(base, target string) bool {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absBase, absTarget)
	return err == nil && filepath.IsLocal(rel)
}
