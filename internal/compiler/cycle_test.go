package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
	"github.com/abunai/impact/internal/testutil"
)

func TestAnalyzeCycles_Empty(t *testing.T) {
	store, err := model.NewBuilder("empty").Build()
	require.NoError(t, err)

	assert.Empty(t, AnalyzeCycles(store))
}

func TestAnalyzeCycles_Acyclic(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(testutil.WarnApp()))
}

func TestAnalyzeCycles_Loop(t *testing.T) {
	store := compileFile(t, "../../testdata/models/loop.cue")

	warnings := AnalyzeCycles(store)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"w_try", "w_retry", "w_try"}, warnings[0].Path)
	assert.Equal(t, "Loop detected: w_try → w_retry → w_try", warnings[0].Message)
	assert.Equal(t, "warning", warnings[0].Level)
}

func TestAnalyzeCycles_Recursion(t *testing.T) {
	store, err := model.NewBuilder("rec").MustAdd(
		model.Element{ID: "rc", Kind: model.KindResourceContainer},
		model.Element{ID: "ac", Kind: model.KindAssemblyContext, Container: "rc"},
		model.Element{ID: "if", Kind: model.KindInterface},
		model.Element{ID: "sig", Kind: model.KindSignature, Interface: "if"},
		model.Element{ID: "r_start", Kind: model.KindStart, Scope: "ac", Successors: []ir.ElementID{"r_call"}},
		model.Element{ID: "r_call", Kind: model.KindExternalCall, Scope: "ac", Signature: "sig", Target: "r_start", Successors: []ir.ElementID{"r_stop"}},
		model.Element{ID: "r_stop", Kind: model.KindStop, Scope: "ac"},
	).Build()
	require.NoError(t, err)

	warnings := AnalyzeCycles(store)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"r_start", "r_call", "r_start"}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "Recursive call detected")
}

func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	store, err := model.NewBuilder("self").MustAdd(
		model.Element{ID: "us", Kind: model.KindUsageScenario},
		model.Element{ID: "spin", Kind: model.KindBranch, Scope: "us", Successors: []ir.ElementID{"spin"}},
	).Build()
	require.NoError(t, err)

	warnings := AnalyzeCycles(store)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"spin", "spin"}, warnings[0].Path)
}
