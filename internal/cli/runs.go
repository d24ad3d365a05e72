package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abunai/impact/internal/store"
)

// RunsOptions holds flags for the runs and show commands.
type RunsOptions struct {
	*RootOptions
	Database string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List persisted analysis runs",
		Long: `List the analysis runs stored in a database, newest first.

Example:
  abunai runs --db ./runs.db
  abunai runs --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a persisted analysis run",
		Long: `Print the stored report of an analysis run. With --format json the
full run record (sources, impacts, sequences, violations) is printed.

Example:
  abunai show --db ./runs.db 0192f7a4-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func openRunStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	return st, nil
}

func runListRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openRunStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list runs", err)
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs found.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMODEL\tSTARTED\tSOURCES\tVIOLATIONS\tTITLE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Model, r.StartedAt.Format("2006-01-02 15:04:05"), r.Sources, r.Violations, r.Title)
	}
	return tw.Flush()
}

func runShow(opts *RunsOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openRunStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.ReadRun(context.Background(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeRunNotFound, fmt.Sprintf("run %s not found", runID), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read run", err)
	}

	if formatter.JSON() {
		return formatter.encode(CLIResponse{Status: "ok", RunID: rec.ID, Data: rec})
	}

	formatter.Logf("Run %s of %s started %s", rec.ID, rec.Model, rec.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprint(formatter.Writer, rec.Report)
	return nil
}
