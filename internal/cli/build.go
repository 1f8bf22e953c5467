package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/engine"
	"github.com/roach88/kiln/internal/site"
)

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the site incrementally",
		Long: `Build the site, recompiling everything in dependency order and
writing only outputs whose bytes changed.

Example:
  kiln build
  kiln --config site.cue build --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, cmd, false)
		},
	}
}

// NewRebuildCommand creates the rebuild command.
func NewRebuildCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Clean, then build from scratch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, cmd, true)
		},
	}
}

// buildSummary renders a report for text output.
type buildSummary struct {
	*engine.Report
}

func (s buildSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d items, %d stale, %d written", s.RunID, s.Items, len(s.Stale), len(s.Written))
	if s.FirstRun {
		b.WriteString(" (first run)")
	}
	b.WriteString("\n")
	for _, p := range s.Written {
		fmt.Fprintf(&b, "  wrote %s\n", p)
	}
	return b.String()
}

func runBuild(opts *RootOptions, cmd *cobra.Command, clean bool) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}

	if clean {
		f.VerboseLog("removing %s and %s", cfg.DestinationDir(), cfg.StoreDir())
		if err := engine.Clean(cfg.Engine()); err != nil {
			_ = f.Error(string(engine.ErrCodeIOFailed), err.Error(), nil)
			return WrapExitError(ExitCommandError, "clean", err)
		}
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(cfg.Engine(), site.Populate(cfg, opts.logger(cmd)), opts.engineOptions(cmd)...)
	report, err := eng.Run(ctx)
	if err != nil {
		return buildFailed(f, err)
	}
	return f.Success(buildSummary{report})
}

func buildFailed(f *OutputFormatter, err error) error {
	code := string(engine.CodeOf(err))
	if code == "" {
		code = "E001"
	}
	var details any
	if engine.IsCycleError(err) {
		var re *engine.RunError
		if errors.As(err, &re) {
			details = map[string]string{"cycle": engine.FormatCycle(re.Cycle)}
		}
	}
	_ = f.Error(code, err.Error(), details)
	return WrapExitError(ExitFailure, "build failed", err)
}
