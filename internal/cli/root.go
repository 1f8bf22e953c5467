package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/config"
	"github.com/roach88/kiln/internal/engine"
	"github.com/roach88/kiln/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // configuration file; found in the working directory when empty

	// RunIDs overrides the run ID generator (for tests).
	RunIDs engine.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kiln CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kiln",
		Short: "kiln - incremental static site builder",
		Long: `kiln builds a static site from a directory of sources.

Only items whose sources, or whose dependencies' sources, changed since the
last successful build are out of date; unchanged outputs are never rewritten.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "configuration file (.yaml, .yml, .cue, .hcl)")

	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewRebuildCommand(opts))
	cmd.AddCommand(NewCleanCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger writes run logs to stderr; debug level when verbose.
func (o *RootOptions) logger(cmd *cobra.Command) *logging.Logger {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	return logging.New(cmd.ErrOrStderr(), level, o.Format)
}

// loadConfig reads the configured file, or the conventional one in the
// working directory, or falls back to defaults.
func (o *RootOptions) loadConfig(f *OutputFormatter) (*config.Config, error) {
	path := o.Config
	if path == "" {
		found, ok := config.Find(".")
		if !ok {
			f.VerboseLog("no configuration file found, using defaults")
			return config.Default(), nil
		}
		path = found
	}
	f.VerboseLog("loading configuration from %s", path)

	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}

	var le *config.LoadError
	var verrs config.ValidationErrors
	switch {
	case errors.As(err, &le):
		_ = f.Error(le.Code, le.Error(), nil)
	case errors.As(err, &verrs):
		_ = f.Error(verrs[0].Code, "invalid configuration", verrs)
	default:
		_ = f.Error("E200", err.Error(), nil)
	}
	return nil, WrapExitError(ExitCommandError, "load configuration", err)
}

func (o *RootOptions) engineOptions(cmd *cobra.Command) []engine.Option {
	opts := []engine.Option{engine.WithLogger(o.logger(cmd))}
	if o.RunIDs != nil {
		opts = append(opts, engine.WithRunIDGenerator(o.RunIDs))
	}
	return opts
}
