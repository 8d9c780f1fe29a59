package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/scenesmith/internal/query"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	DB       string
	Run      string
	Template string
	Category string
	Region   string // "x,y,w,h"
	Limit    int
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search recorded events",
		Long: `Search the events of recorded runs. Filters combine with AND; results are
ordered by run and then by placement order.

Examples:
  scenesmith find --db runs.db --category chest
  scenesmith find --db runs.db --run 0190... --region 0,0,10,10
  scenesmith find --db runs.db --template villager:smith --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("db") {
				opts.DB = opts.Config.DB
			}
			return runFind(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite run database (default from SCENESMITH_DB)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "only events of this run")
	cmd.Flags().StringVar(&opts.Template, "template", "", "only events from this category:id template")
	cmd.Flags().StringVar(&opts.Category, "category", "", "only events from templates of this category")
	cmd.Flags().StringVar(&opts.Region, "region", "", "only events inside x,y,w,h")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of results (0 for all)")

	return cmd
}

func runFind(ctx context.Context, opts *FindOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	q, err := buildFindQuery(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeQuery, err.Error(), nil)
	}
	if errs := query.Validate(q); len(errs) > 0 {
		return formatter.Fail(ExitCommandError, ErrCodeQuery, errs[0].Error(), errs)
	}

	st, err := openExistingStore(opts.DB)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	refs, err := st.FindInstances(ctx, q)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	return formatter.Render(refs, func(w io.Writer) {
		if len(refs) == 0 {
			fmt.Fprintln(w, "No events found.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tEVENT\tTEMPLATE\tX\tY")
		for _, r := range refs {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%d\n", r.RunID, r.EventID, r.TemplateKey, r.X, r.Y)
		}
		_ = tw.Flush()
	})
}

func buildFindQuery(opts *FindOptions) (query.Select, error) {
	var preds []query.Predicate
	if opts.Run != "" {
		preds = append(preds, query.ByRun(opts.Run))
	}
	if opts.Template != "" {
		preds = append(preds, query.ByTemplate(opts.Template))
	}
	if opts.Category != "" {
		preds = append(preds, query.ByCategory(opts.Category))
	}
	if opts.Region != "" {
		region, err := ParseRegion(opts.Region)
		if err != nil {
			return query.Select{}, err
		}
		preds = append(preds, region)
	}
	return query.Select{Filter: query.All(preds...), Limit: opts.Limit}, nil
}

// ParseRegion parses "x,y,w,h" into a Within predicate.
func ParseRegion(s string) (query.Within, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return query.Within{}, fmt.Errorf("invalid --region %q: expected x,y,w,h", s)
	}
	var n [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return query.Within{}, fmt.Errorf("invalid --region %q: %w", s, err)
		}
		n[i] = v
	}
	return query.Within{X: n[0], Y: n[1], W: n[2], H: n[3]}, nil
}
