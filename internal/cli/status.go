package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/kiln/internal/store"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent runs from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return runStatus(rootOpts, cmd, limit)
		},
	}
	cmd.Flags().IntP("limit", "n", 1, "number of runs to show")
	return cmd
}

// StatusResult lists recorded runs, newest first, and the size of the
// cache.
type StatusResult struct {
	Runs    []store.RunRecord `json:"runs"`
	Entries int               `json:"entries"`
}

func (r StatusResult) String() string {
	if len(r.Runs) == 0 {
		return "no runs recorded\n"
	}
	s := ""
	for _, run := range r.Runs {
		s += fmt.Sprintf("run %s: %s (%d items, %d written)\n", run.ID, run.Status, run.Items, run.Written)
		if run.Error != "" {
			s += fmt.Sprintf("  error: %s\n", run.Error)
		}
	}
	return s
}

func runStatus(opts *RootOptions, cmd *cobra.Command, limit int) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}

	dir := cfg.StoreDir()
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return f.Success(StatusResult{})
	}

	st, err := store.OpenDir(dir)
	if err != nil {
		_ = f.Error("IO_FAILED", err.Error(), nil)
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer st.Close()

	runs, err := st.Runs(cmd.Context(), limit)
	if err != nil {
		_ = f.Error("IO_FAILED", err.Error(), nil)
		return WrapExitError(ExitCommandError, "read run ledger", err)
	}
	entries, err := st.Count(cmd.Context())
	if err != nil {
		_ = f.Error("IO_FAILED", err.Error(), nil)
		return WrapExitError(ExitCommandError, "count entries", err)
	}
	return f.Success(StatusResult{Runs: runs, Entries: entries})
}
