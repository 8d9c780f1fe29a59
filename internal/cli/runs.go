package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// RunSummary is one row of the runs listing.
type RunSummary struct {
	Seq          int64  `json:"seq"`
	ID           string `json:"id"`
	Seed         uint64 `json:"seed"`
	Requested    int    `json:"requested"`
	Instances    int    `json:"instances"`
	BatchHash    string `json:"batch_hash"`
	RequestsHash string `json:"requests_hash"`
	Generator    string `json:"generator"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:           "runs",
		Short:         "List recorded runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("db") {
				db = rootOpts.Config.DB
			}
			return runRuns(cmd.Context(), rootOpts, db, cmd)
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "SQLite run database (default from SCENESMITH_DB)")

	return cmd
}

func runRuns(ctx context.Context, opts *RootOptions, db string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd)

	st, err := openExistingStore(db)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	rows := make([]RunSummary, len(runs))
	for i, r := range runs {
		rows[i] = RunSummary{
			Seq:          r.Seq,
			ID:           r.ID,
			Seed:         r.Seed,
			Requested:    r.Requested,
			Instances:    r.InstanceCount,
			BatchHash:    r.BatchHash,
			RequestsHash: r.RequestsHash,
			Generator:    r.Generator,
		}
	}

	return formatter.Render(rows, func(w io.Writer) {
		if len(rows) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEQ\tID\tSEED\tPLACED\tBATCH")
		for _, r := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d/%d\t%s\n", r.Seq, r.ID, r.Seed, r.Instances, r.Requested, shortHash(r.BatchHash))
		}
		_ = tw.Flush()
	})
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
