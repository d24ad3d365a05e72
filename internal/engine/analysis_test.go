package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
	"github.com/abunai/impact/internal/testutil"
)

func newWarnAppAnalysis(opts ...Option) *Analysis {
	store := testutil.WarnApp()
	base := []Option{
		WithRunIDGenerator(testutil.NewFixedRunIDGenerator("run-1")),
		WithClock(testutil.NewFixedClock().Now),
	}
	return New(store, model.NewFinder(store), append(base, opts...)...)
}

func violationIDs(vs []SequenceViolation) map[int][]ir.ElementID {
	out := make(map[int][]ir.ElementID, len(vs))
	for _, v := range vs {
		for _, e := range v.Elements {
			out[v.Index] = append(out[v.Index], e.ID)
		}
	}
	return out
}

func TestAnalysis_Run(t *testing.T) {
	intercepted := testutil.Assume("a1", "Database link may be intercepted.\nDataConstraints: Personal", testutil.StoreConnector)
	placement := testutil.Assume("a2", "NodeConstraints: EdgeNonEU", testutil.Edge, "stale-id")

	res, err := newWarnAppAnalysis().Run(context.Background(), RunInput{
		Assumptions: []*ir.Assumption{intercepted, placement},
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "WarnApp", res.Model)
	assert.Equal(t, testutil.Epoch, res.StartedAt)

	assert.True(t, intercepted.Analyzed)
	assert.True(t, placement.Analyzed)

	require.Len(t, res.Sources, 2)
	assert.Equal(t, testutil.StoreConnector, res.Sources[0].ID)
	assert.Equal(t, testutil.Edge, res.Sources[1].ID)
	assert.Equal(t, []ir.ElementID{"stale-id"}, res.Skipped)

	assert.Len(t, res.Candidates, 3)
	assert.Equal(t, []int{0, 1}, indices(res.ImpactSet))
	assert.Equal(t, []int{0, 1}, indices(res.DistinctImpactSet))

	assert.Equal(t, []string{"Personal"}, res.Constraint.Data)
	assert.Equal(t, []string{"EdgeNonEU"}, res.Constraint.Node)
	assert.Equal(t, map[int][]ir.ElementID{
		0: {"a_token", "d_write"},
		1: {"a_token", "c_start", "c_read", "c_stop"},
	}, violationIDs(res.Violations))
}

func TestAnalysis_PartialSuccess(t *testing.T) {
	res, err := newWarnAppAnalysis().Run(context.Background(), RunInput{
		Assumptions: []*ir.Assumption{testutil.Assume("a1", "", "nope", testutil.CacheConnector)},
	})
	require.NoError(t, err)

	require.Len(t, res.Sources, 1)
	assert.Equal(t, testutil.CacheConnector, res.Sources[0].ID)
	assert.Equal(t, []ir.ElementID{"nope"}, res.Skipped)
	assert.NotEmpty(t, res.Impacts)
	assert.Equal(t, []int{1}, indices(res.DistinctImpactSet))
}

func TestAnalysis_NoConstraintsNoViolations(t *testing.T) {
	res, err := newWarnAppAnalysis().Run(context.Background(), RunInput{
		Assumptions: []*ir.Assumption{testutil.Assume("a1", "free text only", testutil.App)},
	})
	require.NoError(t, err)

	assert.True(t, res.Constraint.IsEmpty())
	assert.NotNil(t, res.Violations)
	assert.Empty(t, res.Violations)
}

func TestAnalysis_PredicateOverrideImpactedOnly(t *testing.T) {
	personal := func(data, _ []string) bool {
		for _, d := range data {
			if d == "Personal" {
				return true
			}
		}
		return false
	}

	res, err := newWarnAppAnalysis().Run(context.Background(), RunInput{
		Assumptions:  []*ir.Assumption{testutil.Assume("a1", "", testutil.Edge)},
		Predicate:    personal,
		ImpactedOnly: true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[int][]ir.ElementID{1: {"a_token"}}, violationIDs(res.Violations))
}

func TestAnalysis_IgnoresNilAssumptions(t *testing.T) {
	a1 := testutil.Assume("a1", "", testutil.Edge)

	res, err := newWarnAppAnalysis().Run(context.Background(), RunInput{
		Assumptions: []*ir.Assumption{nil, a1, nil},
	})
	require.NoError(t, err)

	require.Len(t, res.Sources, 1)
	assert.Equal(t, testutil.Edge, res.Sources[0].ID)
	assert.True(t, a1.Analyzed)
}

func TestAnalysis_NoAssumptions(t *testing.T) {
	res, err := newWarnAppAnalysis().Run(context.Background(), RunInput{})
	require.NoError(t, err)

	assert.Empty(t, res.Sources)
	assert.Empty(t, res.Impacts)
	assert.Empty(t, res.ImpactSet)
	assert.Empty(t, res.DistinctImpactSet)
	assert.Len(t, res.Candidates, 3)
}

func TestAnalysis_ParallelMatchesSequential(t *testing.T) {
	in := func() RunInput {
		return RunInput{Assumptions: []*ir.Assumption{
			testutil.Assume("a1", "DataConstraints: Personal", testutil.App, testutil.Edge, "a_branch"),
			testutil.Assume("a2", "", testutil.UserScenario, testutil.StoreConnector),
		}}
	}

	seq, err := newWarnAppAnalysis().Run(context.Background(), in())
	require.NoError(t, err)
	par, err := newWarnAppAnalysis(WithParallel(true)).Run(context.Background(), in())
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

type failingFinder struct{ err error }

func (f failingFinder) FindAll(context.Context) ([]ir.ActionSequence, error) {
	return nil, f.err
}

func TestAnalysis_FinderFailure(t *testing.T) {
	boom := errors.New("finder exploded")
	store := testutil.WarnApp()
	a := New(store, failingFinder{err: boom}, WithRunIDGenerator(testutil.NewFixedRunIDGenerator("")))

	res, err := a.Run(context.Background(), RunInput{
		Assumptions: []*ir.Assumption{testutil.Assume("a1", "", testutil.App)},
	})

	assert.Nil(t, res)
	assert.True(t, IsUpstreamError(err))
	assert.False(t, IsCancelled(err))
	assert.ErrorIs(t, err, boom)

	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeUpstreamFinder, re.Code)
	assert.Equal(t, "find", re.Stage)
}

func TestAnalysis_SequenceLimit(t *testing.T) {
	store := testutil.WarnApp()
	a := New(store, model.NewFinder(store, model.WithMaxSequences(1)))

	_, err := a.Run(context.Background(), RunInput{})

	assert.True(t, IsUpstreamError(err))
	var limitErr *model.SequenceLimitError
	assert.ErrorAs(t, err, &limitErr)
}

func TestAnalysis_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newWarnAppAnalysis().Run(ctx, RunInput{})

	assert.True(t, IsCancelled(err))
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingObserver struct {
	results []*Result
	errs    []error
}

func (o *recordingObserver) ObserveRun(res *Result, _ time.Duration, err error) {
	o.results = append(o.results, res)
	o.errs = append(o.errs, err)
}

func TestAnalysis_Observer(t *testing.T) {
	obs := &recordingObserver{}
	store := testutil.WarnApp()

	ok := New(store, model.NewFinder(store), WithObserver(obs))
	_, err := ok.Run(context.Background(), RunInput{})
	require.NoError(t, err)

	failing := New(store, failingFinder{err: errors.New("x")}, WithObserver(obs))
	_, err = failing.Run(context.Background(), RunInput{})
	require.Error(t, err)

	require.Len(t, obs.errs, 2)
	assert.NoError(t, obs.errs[0])
	assert.Error(t, obs.errs[1])
	assert.Equal(t, "WarnApp", obs.results[1].Model)
}

func TestAnalysis_ModelNameOverride(t *testing.T) {
	res, err := newWarnAppAnalysis(WithModelName("CoronaWarnApp")).Run(context.Background(), RunInput{})
	require.NoError(t, err)
	assert.Equal(t, "CoronaWarnApp", res.Model)
}
