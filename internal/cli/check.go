package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/engine"
	"github.com/roach88/kiln/internal/site"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the dependency graph without building",
		Long: `Build the dependency graph and report every cycle in it, or the order
items would be compiled in. Nothing is compiled or written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
}

type checkSummary struct {
	*engine.Plan
}

func (s checkSummary) String() string {
	var b strings.Builder
	if len(s.Cycles) > 0 {
		fmt.Fprintf(&b, "%d items, %d cycles\n", s.Items, len(s.Cycles))
		for _, c := range s.Cycles {
			fmt.Fprintf(&b, "  cycle: %s\n", engine.FormatCycle(c))
		}
		return b.String()
	}
	fmt.Fprintf(&b, "%d items, no cycles\n", s.Items)
	for i, id := range s.Order {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, id)
	}
	return b.String()
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}

	eng := engine.New(cfg.Engine(), site.Populate(cfg, opts.logger(cmd)), opts.engineOptions(cmd)...)
	plan, err := eng.Check(cmd.Context())
	if err != nil {
		return buildFailed(f, err)
	}
	if err := f.Success(checkSummary{plan}); err != nil {
		return err
	}
	if len(plan.Cycles) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d dependency cycles", len(plan.Cycles)))
	}
	return nil
}
