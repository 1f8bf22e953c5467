package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/engine"
)

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the destination and store directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(rootOpts, cmd)
		},
	}
}

// CleanResult lists the removed directories.
type CleanResult struct {
	Removed []string `json:"removed"`
}

func (r CleanResult) String() string {
	s := ""
	for _, dir := range r.Removed {
		s += fmt.Sprintf("removed %s\n", dir)
	}
	return s
}

func runClean(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}

	ec := cfg.Engine()
	if err := engine.Clean(ec); err != nil {
		_ = f.Error(string(engine.ErrCodeIOFailed), err.Error(), nil)
		return WrapExitError(ExitCommandError, "clean", err)
	}
	return f.Success(CleanResult{Removed: []string{ec.Destination, ec.StoreDir}})
}
