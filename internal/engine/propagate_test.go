package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
	"github.com/abunai/impact/internal/testutil"
)

func sourceOf(t *testing.T, store ModelStore, id ir.ElementID) ir.Source {
	t.Helper()
	src := NewClassifier(store).Describe(id)
	require.True(t, src.Category.Classifiable(), "%s should be classifiable", id)
	return src
}

func TestPropagator_Rules(t *testing.T) {
	store := testutil.WarnApp()
	p := NewPropagator(store)

	tests := []struct {
		name string
		id   ir.ElementID
		want []ir.ElementID
	}{
		{"connector", testutil.StoreConnector, []ir.ElementID{"s_save", "d_start"}},
		{"resource container", testutil.Edge, []ir.ElementID{"c_start", "c_read", "c_stop"}},
		{"resource container hosting two assemblies", testutil.Cloud, []ir.ElementID{
			"s_start", "s_save", "s_stop", "d_start", "d_write", "d_stop"}},
		{"assembly component", testutil.Server, []ir.ElementID{
			testutil.Server, "s_start", "s_save", "s_stop"}},
		{"usage actor", testutil.AdminScenario, []ir.ElementID{"m_start", "m_check", "m_stop"}},
		{"interface signature", testutil.SaveSignature, []ir.ElementID{"s_save"}},
		{"interface", testutil.UploadInterface, []ir.ElementID{"a_upload"}},
		{"branch", "a_branch", []ir.ElementID{
			"a_branch", "a_upload", "a_cache", "a_stop", "s_start", "c_start",
			"s_save", "c_read", "s_stop", "d_start", "c_stop", "d_write", "d_stop"}},
		{"external call", "s_save", []ir.ElementID{"s_save", "s_stop", "d_start", "d_write", "d_stop"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Affected(sourceOf(t, store, tt.id)))
		})
	}
}

func TestPropagator_AssemblyStaysInScope(t *testing.T) {
	store := testutil.WarnApp()
	p := NewPropagator(store)

	for _, assembly := range []ir.ElementID{testutil.App, testutil.Server} {
		got := p.Affected(sourceOf(t, store, assembly))
		require.Equal(t, assembly, got[0])
		for _, id := range got[1:] {
			el, ok := store.Lookup(id)
			require.True(t, ok, "%s", id)
			assert.Equal(t, assembly, el.Scope, "%s leaked out of %s", id, assembly)
		}
	}

	got := p.Affected(sourceOf(t, store, testutil.Server))
	assert.NotContains(t, got, ir.ElementID("d_start"))
	assert.NotContains(t, got, ir.ElementID("d_write"))
	assert.NotContains(t, got, ir.ElementID("d_stop"))
}

func TestPropagator_SuccessorsOnly(t *testing.T) {
	store := testutil.WarnApp()
	p := NewPropagator(store)

	got := p.Affected(sourceOf(t, store, "a_token"))
	assert.Contains(t, got, ir.ElementID("a_token"))
	assert.Contains(t, got, ir.ElementID("a_branch"))
	assert.Contains(t, got, ir.ElementID("d_write"))
	assert.NotContains(t, got, ir.ElementID("a_start"))
	assert.NotContains(t, got, ir.ElementID("u_open"))
	assert.NotContains(t, got, ir.ElementID("m_check"))

	got = p.Affected(sourceOf(t, store, "u_open"))
	assert.Equal(t, ir.ElementID("u_open"), got[0])
	assert.Contains(t, got, ir.ElementID("u_stop"))
	assert.Contains(t, got, ir.ElementID("c_read"))
}

func TestPropagator_Unclassified(t *testing.T) {
	p := NewPropagator(testutil.WarnApp())

	assert.Empty(t, p.Affected(ir.Source{ID: "a_start", Category: ir.Unclassified}))
}

func TestPropagator_TerminatesOnCycles(t *testing.T) {
	store, err := model.NewBuilder("loop").MustAdd(
		model.Element{ID: "us", Kind: model.KindUsageScenario},
		model.Element{ID: "start", Kind: model.KindStart, Scope: "us", Successors: []ir.ElementID{"try"}},
		model.Element{ID: "try", Kind: model.KindInternalAction, Scope: "us", Successors: []ir.ElementID{"retry"}},
		model.Element{ID: "retry", Kind: model.KindBranch, Scope: "us", Successors: []ir.ElementID{"try", "stop"}},
		model.Element{ID: "stop", Kind: model.KindStop, Scope: "us"},
	).Build()
	require.NoError(t, err)

	p := NewPropagator(store)
	assert.Equal(t, []ir.ElementID{"retry", "try", "stop"}, p.Affected(sourceOf(t, store, "retry")))
	assert.Equal(t, []ir.ElementID{"start", "try", "retry", "stop"}, p.Affected(sourceOf(t, store, "us")))
}

func TestPropagator_NoDuplicatePairsPerSource(t *testing.T) {
	store := testutil.WarnApp()
	p := NewPropagator(store)
	c := NewClassifier(store)

	for _, e := range store.Elements() {
		src := c.Describe(e.ID)
		if !src.Category.Classifiable() {
			continue
		}
		impacts, err := p.Propagate(context.Background(), []ir.Source{src})
		require.NoError(t, err)

		seen := make(map[ir.Impact]bool)
		for _, imp := range impacts {
			assert.False(t, seen[imp], "duplicate impact %s", imp)
			seen[imp] = true
		}
	}
}

func TestPropagator_KeepsImpactsOfDifferentSources(t *testing.T) {
	store := testutil.WarnApp()
	p := NewPropagator(store)

	impacts, err := p.Propagate(context.Background(), []ir.Source{
		sourceOf(t, store, testutil.UploadConnector),
		sourceOf(t, store, testutil.UploadSignature),
	})
	require.NoError(t, err)

	var onUpload []ir.ElementID
	for _, imp := range impacts {
		if imp.Affected == "a_upload" {
			onUpload = append(onUpload, imp.Source.ID)
		}
	}
	assert.Equal(t, []ir.ElementID{testutil.UploadConnector, testutil.UploadSignature}, onUpload)
}

func TestPropagator_ParallelMatchesSequential(t *testing.T) {
	store := testutil.WarnApp()
	c := NewClassifier(store)

	var sources []ir.Source
	for _, e := range store.Elements() {
		if src := c.Describe(e.ID); src.Category.Classifiable() {
			sources = append(sources, src)
		}
	}

	seq, err := NewPropagator(store).Propagate(context.Background(), sources)
	require.NoError(t, err)
	par, err := NewPropagator(store, WithParallelSources(true)).Propagate(context.Background(), sources)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestPropagator_Cancelled(t *testing.T) {
	store := testutil.WarnApp()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sources := []ir.Source{sourceOf(t, store, testutil.App), sourceOf(t, store, testutil.Edge)}

	_, err := NewPropagator(store).Propagate(ctx, sources)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewPropagator(store, WithParallelSources(true)).Propagate(ctx, sources)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPropagator_NoSources(t *testing.T) {
	impacts, err := NewPropagator(testutil.WarnApp()).Propagate(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, impacts)
	assert.Empty(t, impacts)
}
