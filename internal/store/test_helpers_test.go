package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abunai/impact/internal/engine"
	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
	"github.com/abunai/impact/internal/testutil"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// warnAppResult runs the warn-app fixture with a fixed run id.
func warnAppResult(t *testing.T, runID string, assumptions ...*ir.Assumption) *engine.Result {
	t.Helper()
	store := testutil.WarnApp()
	a := engine.New(store, model.NewFinder(store),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(runID)),
		engine.WithClock(testutil.NewFixedClock().Now),
	)
	res, err := a.Run(context.Background(), engine.RunInput{Assumptions: assumptions})
	require.NoError(t, err)
	return res
}
