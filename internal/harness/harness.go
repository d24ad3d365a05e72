package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abunai/impact/internal/compiler"
	"github.com/abunai/impact/internal/engine"
	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
	"github.com/abunai/impact/internal/report"
	"github.com/abunai/impact/internal/testutil"
)

// ReportOptions returns the report options used for scenario reports.
func ReportOptions(s *Scenario) report.Options {
	return report.Options{Title: s.Title, Details: true, Overview: true}
}

// Run executes a scenario and returns the result.
//
// The model is compiled fresh for every run. A fixed run id and clock make
// the result and report reproducible.
//
// Returns an error if the model cannot be compiled or the analysis fails;
// unmet expectations are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, nil)
}

// RunContext is Run with a context and logger. A nil logger discards logs.
func RunContext(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store, err := compiler.LoadModel(scenario.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	analysis := engine.New(store, model.NewFinder(store),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		engine.WithClock(testutil.NewFixedClock().Now),
		engine.WithLogger(logger),
	)

	res, err := analysis.Run(ctx, engine.RunInput{Assumptions: Assumptions(scenario)})
	if err != nil {
		return nil, fmt.Errorf("failed to run analysis: %w", err)
	}

	result := NewResult()
	result.Analysis = res
	result.Report = report.String(res, ReportOptions(scenario))

	for _, err := range Check(res, scenario.Expect) {
		result.AddError(err.Error())
	}

	logger.Debug("scenario finished", "scenario", scenario.Name, "pass", result.Pass)
	return result, nil
}

// Assumptions converts the scenario's assumption specs.
func Assumptions(s *Scenario) []*ir.Assumption {
	out := make([]*ir.Assumption, 0, len(s.Assumptions))
	for _, spec := range s.Assumptions {
		a := &ir.Assumption{ID: spec.ID, Type: spec.Type, Description: spec.Description}
		for _, id := range spec.Entities {
			a.AffectedEntities = append(a.AffectedEntities, ir.ModelEntity{ID: id})
		}
		out = append(out, a)
	}
	return out
}
