package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abunai/impact/internal/confidentiality"
	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
)

// SequenceFinder enumerates candidate action sequences.
// Implemented by *model.Finder.
type SequenceFinder interface {
	FindAll(ctx context.Context) ([]ir.ActionSequence, error)
}

// Observer is notified after every run, successful or not.
type Observer interface {
	ObserveRun(res *Result, elapsed time.Duration, err error)
}

// RunInput is the input of one analysis run.
type RunInput struct {
	// Assumptions name the uncertain elements. Each assumption is marked
	// Analyzed once its entities have been registered.
	Assumptions []*ir.Assumption

	// Predicate overrides the constraint built from the assumption
	// descriptions.
	Predicate confidentiality.Predicate

	// ImpactedOnly restricts violation checks to the distinct impact set
	// instead of every candidate sequence.
	ImpactedOnly bool
}

// SequenceViolation lists the violating elements of one sequence.
type SequenceViolation struct {
	Index    int              `json:"index"`
	Elements []ir.FlowElement `json:"elements"`
}

// Result is the outcome of one analysis run.
type Result struct {
	RunID     string    `json:"run_id"`
	Model     string    `json:"model"`
	StartedAt time.Time `json:"started_at"`

	Sources []ir.Source    `json:"sources"`
	Skipped []ir.ElementID `json:"skipped"`
	Impacts []ir.Impact    `json:"impacts"`

	Candidates []ir.ActionSequence `json:"candidates"`
	*Collection

	Constraint confidentiality.Constraint `json:"constraint"`
	Violations []SequenceViolation       `json:"violations"`
}

// Analysis runs uncertainty impact analyses over one model.
//
// Each Run gets its own classifier, registry and accumulators; the model
// store is only read. Thread-safety: Run is safe for concurrent use.
type Analysis struct {
	store    ModelStore
	finder   SequenceFinder
	name     string
	resolver model.Resolver
	runIDs   RunIDGenerator
	clock    func() time.Time
	parallel bool
	observer Observer
	logger   *slog.Logger
}

// Option configures an Analysis.
type Option func(*Analysis)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analysis) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRunIDGenerator sets the run id source. Default: UUIDv7Generator.
func WithRunIDGenerator(gen RunIDGenerator) Option {
	return func(a *Analysis) {
		a.runIDs = gen
	}
}

// WithClock sets the time source for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analysis) {
		a.clock = now
	}
}

// WithParallel propagates sources concurrently.
func WithParallel(enabled bool) Option {
	return func(a *Analysis) {
		a.parallel = enabled
	}
}

// WithResolver sets the characteristic resolver used for violation checks.
func WithResolver(r model.Resolver) Option {
	return func(a *Analysis) {
		a.resolver = r
	}
}

// WithObserver registers a run observer (e.g. metrics).
func WithObserver(o Observer) Option {
	return func(a *Analysis) {
		a.observer = o
	}
}

// WithModelName overrides the model name recorded in results.
func WithModelName(name string) Option {
	return func(a *Analysis) {
		a.name = name
	}
}

// New creates an analysis over a model store and its sequence finder.
func New(store ModelStore, finder SequenceFinder, opts ...Option) *Analysis {
	a := &Analysis{
		store:    store,
		finder:   finder,
		resolver: model.LiteralResolver{},
		runIDs:   UUIDv7Generator{},
		clock:    time.Now,
		logger:   slog.New(slog.DiscardHandler),
	}
	if named, ok := store.(interface{ Name() string }); ok {
		a.name = named.Name()
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes classify → register → propagate → find → collect → evaluate.
//
// Unclassifiable entities are skipped, not errors. Returns *RunError when the
// sequence finder fails or ctx is done between stages.
func (a *Analysis) Run(ctx context.Context, in RunInput) (*Result, error) {
	res := &Result{
		RunID:     a.runIDs.Generate(),
		Model:     a.name,
		StartedAt: a.clock(),
	}
	start := time.Now()
	logger := a.logger.With("run_id", res.RunID, "model", res.Model)

	err := a.run(ctx, in, res, logger)

	if a.observer != nil {
		a.observer.ObserveRun(res, time.Since(start), err)
	}
	if err != nil {
		logger.Error("analysis failed", "error", err)
		return nil, err
	}
	logger.Info("analysis complete",
		"sources", len(res.Sources),
		"skipped", len(res.Skipped),
		"affected", len(res.AllAffected),
		"impacted", len(res.ImpactSet),
		"distinct", len(res.DistinctImpactSet),
		"violations", len(res.Violations))
	return res, nil
}

func (a *Analysis) run(ctx context.Context, in RunInput, res *Result, logger *slog.Logger) error {
	if err := checkStage(ctx, "register"); err != nil {
		return err
	}
	registry := NewRegistry(NewClassifier(a.store), logger)
	descriptions := make([]string, 0, len(in.Assumptions))
	for _, as := range in.Assumptions {
		if as == nil {
			continue
		}
		registry.RegisterAssumption(as)
		descriptions = append(descriptions, as.Description)
	}
	res.Sources = registry.Sources()
	res.Skipped = registry.Skipped()

	if err := checkStage(ctx, "propagate"); err != nil {
		return err
	}
	propagator := NewPropagator(a.store, WithParallelSources(a.parallel), WithPropagationLogger(logger))
	impacts, err := propagator.Propagate(ctx, res.Sources)
	if err != nil {
		if cerr := checkStage(ctx, "propagate"); cerr != nil {
			return cerr
		}
		return err
	}
	res.Impacts = impacts

	if err := checkStage(ctx, "find"); err != nil {
		return err
	}
	candidates, err := a.finder.FindAll(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &RunError{Code: ErrCodeCancelled, Stage: "find", Message: "run abandoned", Err: err}
		}
		return newFinderError(err)
	}
	res.Candidates = candidates
	logger.Debug("found candidate sequences", "count", len(candidates))

	res.Collection = Collect(res.Impacts, candidates)

	if err := checkStage(ctx, "evaluate"); err != nil {
		return err
	}
	res.Constraint = confidentiality.FromDescriptions(descriptions...)
	pred := in.Predicate
	if pred == nil {
		pred = res.Constraint.Predicate()
	}
	res.Violations = a.evaluate(res, pred, in.ImpactedOnly)
	return nil
}

func (a *Analysis) evaluate(res *Result, pred confidentiality.Predicate, impactedOnly bool) []SequenceViolation {
	evaluator := confidentiality.NewEvaluator(a.resolver)
	violations := []SequenceViolation{}

	check := func(index int, seq ir.ActionSequence) {
		if found := evaluator.Evaluate(seq, pred); len(found) > 0 {
			violations = append(violations, SequenceViolation{Index: index, Elements: found})
		}
	}
	if impactedOnly {
		for _, s := range res.DistinctImpactSet {
			check(s.Index, s.Sequence)
		}
	} else {
		for i, seq := range res.Candidates {
			check(i, seq)
		}
	}
	return violations
}
