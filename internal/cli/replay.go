package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/scenesmith/internal/engine"
	"github.com/roach88/scenesmith/internal/placement"
	"github.com/roach88/scenesmith/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	DB       string
	Attempts int
}

// ReplayReport compares a recorded run with its regeneration.
type ReplayReport struct {
	RunID         string `json:"run_id"`
	Seed          uint64 `json:"seed"`
	Attempts      int    `json:"attempts"`
	Expected      string `json:"expected"`
	Actual        string `json:"actual"`
	Match         bool   `json:"match"`
	StoredIntact  bool   `json:"stored_intact"`
	Corrupt       []int  `json:"corrupt,omitempty"`
	InstanceCount int    `json:"instance_count"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <run-id> <templates-dir>",
		Short: "Regenerate a recorded run and compare hashes",
		Long: `Regenerate a recorded run from its stored seed, grid and requests and
compare the batch hash with the recorded one. The stored records are also
re-hashed to detect tampering.

A mismatch means the templates, the grid handling or the generator changed
since the run was recorded.

Exit codes:
  0 - Replay matches and stored records are intact
  1 - Hash mismatch or corrupt records
  2 - Command error (database or run not found, etc.)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("db") {
				opts.DB = opts.Config.DB
			}
			return runReplay(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite run database (default from SCENESMITH_DB)")
	cmd.Flags().IntVar(&opts.Attempts, "attempts", 0, "override the recorded placement attempts per event")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, runID, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Attempts < 0 {
		return formatter.Fail(ExitCommandError, ErrCodePlacement, "--attempts must not be negative", nil)
	}

	st, err := openExistingStore(opts.DB)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("run not found: %s", runID), nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	reqs, err := engine.ParseRequests([]byte(run.Requests))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRequests, fmt.Sprintf("stored requests: %v", err), nil)
	}
	grid, err := placement.ParseGrid([]byte(run.Grid))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGrid, fmt.Sprintf("stored grid: %v", err), nil)
	}

	reg, err := loadRegistry(formatter, dir)
	if err != nil {
		return err
	}

	attempts := run.Attempts
	if opts.Attempts > 0 {
		attempts = opts.Attempts
	}
	placer := newPlacer(reg, attempts, run.FirstEventID, opts.Logger(cmd.ErrOrStderr()))
	replayed, err := engine.Replay(ctx, placer, grid, reqs, run.Seed, run.BatchHash)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodePlacement, err.Error(), nil)
	}

	verification, err := st.VerifyRun(ctx, runID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	report := ReplayReport{
		RunID:         run.ID,
		Seed:          run.Seed,
		Attempts:      attempts,
		Expected:      replayed.Expected,
		Actual:        replayed.Actual,
		Match:         replayed.Match(),
		StoredIntact:  verification.OK(),
		Corrupt:       verification.Corrupt,
		InstanceCount: verification.InstanceCount,
	}

	if report.Match && report.StoredIntact {
		return formatter.Render(report, func(w io.Writer) {
			fmt.Fprintf(w, "\u2713 Run %s replays identically (%d instance(s))\n", report.RunID, report.InstanceCount)
			fmt.Fprintf(w, "  batch hash: %s\n", report.Actual)
		})
	}

	message := fmt.Sprintf("run %s does not replay", report.RunID)
	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeMismatch, message, report)
	} else {
		w := formatter.Writer
		fmt.Fprintf(w, "\u2717 %s\n", message)
		if !report.Match {
			fmt.Fprintf(w, "  expected: %s\n", report.Expected)
			fmt.Fprintf(w, "  actual:   %s\n", report.Actual)
		}
		if !report.StoredIntact {
			fmt.Fprintf(w, "  stored records failed verification (corrupt: %v)\n", report.Corrupt)
		}
	}
	return NewExitError(ExitFailure, message)
}

// openExistingStore opens a run database that must already exist.
func openExistingStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no database given: use --db or SCENESMITH_DB")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	return store.Open(path)
}
