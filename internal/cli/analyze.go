package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abunai/impact/internal/compiler"
	"github.com/abunai/impact/internal/config"
	"github.com/abunai/impact/internal/engine"
	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/report"
	"github.com/abunai/impact/internal/runner"
	"github.com/abunai/impact/internal/store"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Assumptions  string
	Title        string
	Database     string
	NewLine      bool
	Details      bool
	Overview     bool
	Parallel     bool
	ImpactedOnly bool
	MaxSequences int
	Timeout      time.Duration

	// FailOnViolation exits with ExitFailure when violations are found.
	FailOnViolation bool

	// RunIDs and Clock override run id and timestamp sources (tests).
	RunIDs engine.RunIDGenerator
	Clock  func() time.Time
}

// AnalyzeResult is the JSON payload of the analyze command.
type AnalyzeResult struct {
	RunID       string                     `json:"run_id"`
	Model       string                     `json:"model"`
	Sources     []ir.Source                `json:"sources"`
	Skipped     []ir.ElementID             `json:"skipped"`
	AllAffected []ir.ElementID             `json:"all_affected"`
	Distinct    []int                      `json:"distinct"`
	Violations  []engine.SequenceViolation `json:"violations"`
	Assumptions []*ir.Assumption           `json:"assumptions"`
	Report      string                     `json:"report"`
	Saved       bool                       `json:"saved"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	cfg := config.Load()
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <model>",
		Short: "Run an uncertainty impact analysis",
		Long: `Run an uncertainty impact analysis on an architecture model.

The model is a YAML file or a CUE package directory. Assumptions name the
model elements that carry uncertainty; their descriptions may hold
confidentiality constraints ("DataConstraints: ..." / "NodeConstraints: ...").

Exit codes:
  0 - Analysis finished
  1 - Violations found (with --fail-on-violation) or model invalid
  2 - Command error (unreadable files, database errors, etc.)

Examples:
  abunai analyze ./models/warnapp.yaml --assumptions ./assumptions.yaml
  abunai analyze ./models/warnapp.yaml --assumptions ./a.yaml --details --overview
  abunai analyze ./models/loop --assumptions ./a.yaml --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Assumptions, "assumptions", "a", "", "assumption file (YAML)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "report title (defaults to the model name)")
	cmd.Flags().StringVar(&opts.Database, "db", cfg.DBPath, "persist the run to this SQLite database")
	cmd.Flags().BoolVar(&opts.NewLine, "newline", false, "print one violating element per line")
	cmd.Flags().BoolVar(&opts.Details, "details", false, "list uncertainty sources and their impacts")
	cmd.Flags().BoolVar(&opts.Overview, "overview", false, "list all affected elements and impacted sequences")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", cfg.Parallel, "propagate sources concurrently")
	cmd.Flags().BoolVar(&opts.ImpactedOnly, "impacted-only", false, "check violations on impacted sequences only")
	cmd.Flags().IntVar(&opts.MaxSequences, "max-sequences", cfg.MaxSequences, "maximum candidate sequences")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", cfg.RunTimeout, "run timeout (0 disables)")
	cmd.Flags().BoolVar(&opts.FailOnViolation, "fail-on-violation", false, "exit 1 when violations are found")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, modelPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	assumptions := []*ir.Assumption{}
	if opts.Assumptions != "" {
		loaded, err := LoadAssumptions(opts.Assumptions)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeAssumptions, "failed to load assumptions", err)
		}
		assumptions = loaded
	}
	formatter.Logf("Loaded %d assumption(s)", len(assumptions))

	r := &runner.Runner{
		Logger:       logger,
		MaxSequences: opts.MaxSequences,
		Parallel:     opts.Parallel,
		Timeout:      opts.Timeout,
		RunIDs:       opts.RunIDs,
		Clock:        opts.Clock,
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		r.Store = st
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out, err := r.Run(ctx, runner.Request{
		ModelPath:   modelPath,
		Assumptions: assumptions,
		Report: report.Options{
			Title:             opts.Title,
			NewLinePerElement: opts.NewLine,
			Details:           opts.Details,
			Overview:          opts.Overview,
		},
		ImpactedOnly: opts.ImpactedOnly,
	})
	if err != nil {
		return analyzeError(formatter, err)
	}

	res := out.Result
	if formatter.JSON() {
		distinct := make([]int, 0, len(res.DistinctImpactSet))
		for _, s := range res.DistinctImpactSet {
			distinct = append(distinct, s.Index)
		}
		if err := formatter.encode(CLIResponse{
			Status: "ok",
			RunID:  res.RunID,
			Data: AnalyzeResult{
				RunID:       res.RunID,
				Model:       res.Model,
				Sources:     res.Sources,
				Skipped:     res.Skipped,
				AllAffected: res.AllAffected,
				Distinct:    distinct,
				Violations:  res.Violations,
				Assumptions: assumptions,
				Report:      out.Report,
				Saved:       out.Saved,
			},
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprint(formatter.Writer, out.Report)
		if out.Saved {
			formatter.Logf("Run %s saved to %s", res.RunID, opts.Database)
		}
	}

	if opts.FailOnViolation && len(res.Violations) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d sequence(s) violate confidentiality", len(res.Violations)))
	}
	return nil
}

// analyzeError reports a failed run. Invalid models list their validation
// errors.
func analyzeError(formatter *OutputFormatter, err error) error {
	var modelErr *compiler.ModelError
	if errors.As(err, &modelErr) {
		if formatter.JSON() {
			_ = formatter.Error(ErrCodeModel, "model is invalid", modelErr.Errors)
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Model is invalid")
			fmt.Fprintln(formatter.Writer)
			printValidationErrors(formatter, modelErr.Errors)
		}
		return WrapExitError(ExitFailure, "model is invalid", err)
	}
	if engine.IsUpstreamError(err) {
		return formatter.Fail(ExitCommandError, ErrCodeModel, "failed to load model", err)
	}
	return formatter.Fail(ExitCommandError, ErrCodeAnalysis, "analysis failed", err)
}
