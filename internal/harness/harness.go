package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/kiln/internal/config"
	"github.com/roach88/kiln/internal/engine"
	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/logging"
	"github.com/roach88/kiln/internal/site"
	"github.com/roach88/kiln/internal/testutil"
)

// Harness executes the builds of one scenario in a site directory.
type Harness struct {
	dir    string
	clock  *testutil.DeterministicClock
	runIDs *testutil.SequenceGenerator
	logger *logging.Logger
}

// Run executes a scenario in a fresh temporary directory, which is removed
// afterwards.
//
// The returned error reports problems with the scenario itself (a file that
// cannot be written, a configuration that does not load, a failure without
// a run error code). Failed expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "kiln-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create site directory: %w", err)
	}
	defer os.RemoveAll(dir)
	return RunIn(context.Background(), dir, scenario)
}

// RunIn executes a scenario in dir, which should be empty. The site is left
// in place for inspection.
func RunIn(ctx context.Context, dir string, scenario *Scenario) (*Result, error) {
	h := &Harness{
		dir:    dir,
		clock:  testutil.NewDeterministicClock(),
		runIDs: testutil.NewSequenceGenerator("run"),
		logger: logging.Discard(),
	}

	if err := h.write("kiln.yaml", scenario.Config); err != nil {
		return nil, err
	}
	for p, content := range scenario.Files {
		if err := h.write(p, content); err != nil {
			return nil, err
		}
	}

	result := NewResult()
	var cfg *config.Config
	for _, step := range scenario.Runs {
		trace, loaded, err := h.build(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", step.Name, err)
		}
		cfg = loaded
		result.Runs = append(result.Runs, trace)
		for _, msg := range checkExpect(step, trace) {
			result.AddError(msg)
		}
	}

	actx := &AssertionContext{
		Ctx:         ctx,
		Destination: cfg.DestinationDir(),
		StoreDir:    cfg.StoreDir(),
		Result:      result,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) write(rel, content string) error {
	full := filepath.Join(h.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// build applies a step's edits and runs the engine once.
func (h *Harness) build(ctx context.Context, step RunStep) (RunTrace, *config.Config, error) {
	if step.Config != "" {
		if err := h.write("kiln.yaml", step.Config); err != nil {
			return RunTrace{}, nil, err
		}
	}
	for p, content := range step.Write {
		if err := h.write(p, content); err != nil {
			return RunTrace{}, nil, err
		}
	}
	for _, p := range step.Remove {
		if err := os.Remove(filepath.Join(h.dir, filepath.FromSlash(p))); err != nil {
			return RunTrace{}, nil, fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}

	cfg, err := config.Load(filepath.Join(h.dir, "kiln.yaml"))
	if err != nil {
		return RunTrace{}, nil, err
	}
	if step.Clean {
		if err := engine.Clean(cfg.Engine()); err != nil {
			return RunTrace{}, nil, err
		}
	}

	eng := engine.New(cfg.Engine(), site.Populate(cfg, h.logger),
		engine.WithLogger(h.logger),
		engine.WithRunIDGenerator(h.runIDs),
	)
	report, err := eng.Run(ctx)
	if err != nil {
		code := engine.CodeOf(err)
		if code == "" {
			return RunTrace{}, nil, err
		}
		h.logger.Report("build failed", "run", step.Name, "code", string(code))
		return RunTrace{
			Name:     step.Name,
			Error:    string(code),
			Order:    []string{},
			Modified: []string{},
			Stale:    []string{},
			Written:  []string{},
			Steps:    []StepTrace{},
		}, cfg, nil
	}

	trace := RunTrace{
		Name:     step.Name,
		RunID:    report.RunID,
		FirstRun: report.FirstRun,
		Order:    names(report.Order),
		Modified: names(report.Modified),
		Stale:    names(report.Stale),
		Written:  append([]string{}, report.Written...),
		Steps:    make([]StepTrace, 0, len(report.Steps)),
	}
	for _, s := range report.Steps {
		trace.Steps = append(trace.Steps, StepTrace{
			Seq:     h.clock.Next(),
			Item:    s.ID.String(),
			Kind:    s.Kind,
			Stale:   s.Stale,
			Route:   s.Route,
			Written: s.Written,
		})
	}
	return trace, cfg, nil
}

func names(ids []item.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// checkExpect compares a run's trace with the step's expectations.
func checkExpect(step RunStep, trace RunTrace) []string {
	want := step.Expect
	if want == nil {
		want = &RunExpect{}
	}

	var errs []string
	if trace.Error != want.Error {
		if want.Error == "" {
			errs = append(errs, fmt.Sprintf("run %q: unexpected error %s", step.Name, trace.Error))
		} else {
			errs = append(errs, fmt.Sprintf("run %q: expected error %s, got %q", step.Name, want.Error, trace.Error))
		}
		return errs
	}
	if want.Error != "" {
		return errs
	}

	if want.FirstRun != nil && *want.FirstRun != trace.FirstRun {
		errs = append(errs, fmt.Sprintf("run %q: first_run = %v, want %v", step.Name, trace.FirstRun, *want.FirstRun))
	}
	lists := []struct {
		field string
		want  *[]string
		got   []string
	}{
		{"order", want.Order, trace.Order},
		{"modified", want.Modified, trace.Modified},
		{"stale", want.Stale, trace.Stale},
		{"written", want.Written, trace.Written},
	}
	for _, l := range lists {
		if l.want == nil {
			continue
		}
		if diff := cmp.Diff(*l.want, l.got, cmpopts.EquateEmpty()); diff != "" {
			errs = append(errs, fmt.Sprintf("run %q: %s mismatch (-want +got):\n%s", step.Name, l.field, diff))
		}
	}
	return errs
}
