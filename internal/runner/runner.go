// Package runner wires model loading, analysis, reporting and persistence
// into one call shared by the CLI and the HTTP server.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abunai/impact/internal/compiler"
	"github.com/abunai/impact/internal/engine"
	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
	"github.com/abunai/impact/internal/report"
	"github.com/abunai/impact/internal/store"
)

// Request describes one analysis.
type Request struct {
	// ModelPath is a model file or CUE package directory.
	ModelPath string

	Assumptions []*ir.Assumption

	// Report controls the rendered output log.
	Report report.Options

	// ImpactedOnly restricts violation checks to the distinct impact set.
	ImpactedOnly bool
}

// Outcome is a finished analysis.
type Outcome struct {
	Result *engine.Result
	Report string

	// Saved is true when the run was written to the run store.
	Saved bool
}

// Runner executes analyses with shared settings.
type Runner struct {
	// Logger receives run logs. Nil discards them.
	Logger *slog.Logger

	// Observer is notified of every run, e.g. metrics.
	Observer engine.Observer

	// Store persists finished runs. Nil disables persistence.
	Store *store.Store

	// MaxSequences bounds sequence enumeration. Zero keeps the finder default.
	MaxSequences int

	Parallel bool

	// Timeout bounds a run. Zero means no limit beyond the caller's context.
	Timeout time.Duration

	// RunIDs and Clock override run id and timestamp sources (tests).
	RunIDs engine.RunIDGenerator
	Clock  func() time.Time
}

// Run loads the model, analyzes it and renders the report. The run is
// persisted when a store is configured.
//
// Returns *engine.RunError with code UPSTREAM_MODEL when the model cannot be
// loaded, and the analysis error otherwise.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	st, err := compiler.LoadModel(req.ModelPath)
	if err != nil {
		return nil, engine.NewModelError(req.ModelPath, err)
	}
	logger.Debug("model loaded", "model", st.Name(), "elements", st.Len())

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithParallel(r.Parallel),
	}
	if r.Observer != nil {
		opts = append(opts, engine.WithObserver(r.Observer))
	}
	if r.RunIDs != nil {
		opts = append(opts, engine.WithRunIDGenerator(r.RunIDs))
	}
	if r.Clock != nil {
		opts = append(opts, engine.WithClock(r.Clock))
	}

	finder := model.NewFinder(st, model.WithMaxSequences(r.MaxSequences))
	res, err := engine.New(st, finder, opts...).Run(ctx, engine.RunInput{
		Assumptions:  req.Assumptions,
		ImpactedOnly: req.ImpactedOnly,
	})
	if err != nil {
		return nil, err
	}

	out := &Outcome{Result: res, Report: report.String(res, req.Report)}

	if r.Store != nil {
		title := req.Report.Title
		if title == "" {
			title = res.Model
		}
		inserted, err := r.Store.SaveRun(ctx, store.FromResult(res, title, out.Report))
		if err != nil {
			return nil, fmt.Errorf("persist run %s: %w", res.RunID, err)
		}
		out.Saved = inserted
		logger.Debug("run persisted", "run_id", res.RunID, "inserted", inserted)
	}

	return out, nil
}
