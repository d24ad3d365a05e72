package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/model"
	"github.com/abunai/impact/internal/testutil"
)

func TestStore_Lookup(t *testing.T) {
	s := testutil.WarnApp()

	e, ok := s.Lookup(testutil.App)
	require.True(t, ok)
	assert.Equal(t, model.KindAssemblyContext, e.Kind)
	assert.Equal(t, testutil.Phone, e.Container)

	_, ok = s.Lookup("nope")
	assert.False(t, ok)
}

func TestStore_Neighbors(t *testing.T) {
	s := testutil.WarnApp()

	tests := []struct {
		name string
		id   ir.ElementID
		rel  model.Relation
		want []ir.ElementID
	}{
		{"successor", "a_token", model.Successor, []ir.ElementID{"a_branch"}},
		{"branch successors", "a_branch", model.Successor, []ir.ElementID{"a_upload", "a_cache"}},
		{"branch starts", "a_branch", model.BranchStarts, []ir.ElementID{"a_upload", "a_cache"}},
		{"calls", "u_open", model.Calls, []ir.ElementID{"a_start"}},
		{"executed in", testutil.Server, model.ExecutedIn, []ir.ElementID{"s_start", "s_save", "s_stop"}},
		{"hosts", testutil.Cloud, model.Hosts, []ir.ElementID{testutil.Server, testutil.DB}},
		{"scenario actions", testutil.AdminScenario, model.ScenarioActions, []ir.ElementID{"m_start", "m_check", "m_stop"}},
		{"signature call sites", testutil.SaveSignature, model.SignatureCallSites, []ir.ElementID{"s_save"}},
		{"interface signatures", testutil.AppInterface, model.InterfaceSignatures, []ir.ElementID{testutil.OpenSignature}},
		{"connector call sites", testutil.UploadConnector, model.ConnectorCallSites, []ir.ElementID{"a_upload"}},
		{"no neighbors", "u_stop", model.Successor, nil},
		{"unknown id", "nope", model.Successor, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Neighbors(tt.id, tt.rel))
		})
	}
}

func TestStore_NeighborsReturnsCopy(t *testing.T) {
	s := testutil.WarnApp()

	got := s.Neighbors("a_branch", model.Successor)
	got[0] = "mutated"

	assert.Equal(t, []ir.ElementID{"a_upload", "a_cache"}, s.Neighbors("a_branch", model.Successor))
}

func TestStore_EntryOf(t *testing.T) {
	s := testutil.WarnApp()

	entry, ok := s.EntryOf(testutil.UserScenario)
	require.True(t, ok)
	assert.Equal(t, ir.ElementID("u_start"), entry)

	_, ok = s.EntryOf(testutil.App)
	assert.False(t, ok)
}

func TestStore_EntryOfWithoutStart(t *testing.T) {
	s, err := model.NewBuilder("m").MustAdd(
		model.Element{ID: "us", Kind: model.KindUsageScenario},
		model.Element{ID: "x", Kind: model.KindInternalAction, Scope: "us"},
	).Build()
	require.NoError(t, err)

	entry, ok := s.EntryOf("us")
	require.True(t, ok)
	assert.Equal(t, ir.ElementID("x"), entry)
}

func TestStore_NodeCharacteristicsOf(t *testing.T) {
	s := testutil.WarnApp()

	assert.Equal(t, "CloudEU", s.NodeCharacteristicsOf("d_write")[0].Literal)
	assert.Equal(t, "User", s.NodeCharacteristicsOf("u_open")[0].Literal)
	assert.Nil(t, s.NodeCharacteristicsOf(testutil.App))
	assert.Nil(t, s.NodeCharacteristicsOf("nope"))
}

func TestStore_Elements(t *testing.T) {
	s := testutil.WarnApp()

	all := s.Elements()
	require.Len(t, all, s.Len())
	assert.Equal(t, testutil.Phone, all[0].ID)
}

func TestBuilder_Duplicate(t *testing.T) {
	b := model.NewBuilder("m")
	require.NoError(t, b.Add(model.Element{ID: "x", Kind: model.KindInterface}))

	err := b.Add(model.Element{ID: "x", Kind: model.KindInterface})
	var dup *model.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, ir.ElementID("x"), dup.ID)
}

func TestBuilder_EmptyID(t *testing.T) {
	err := model.NewBuilder("m").Add(model.Element{Kind: model.KindInterface})
	assert.Error(t, err)
}

func TestBuilder_DanglingReference(t *testing.T) {
	_, err := model.NewBuilder("m").MustAdd(
		model.Element{ID: "ac", Kind: model.KindAssemblyContext, Container: "missing"},
	).Build()

	var ref *model.ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, ir.ElementID("ac"), ref.Element)
	assert.Equal(t, "container", ref.Field)
	assert.Equal(t, "not found", ref.Reason)
}

func TestBuilder_WrongKindReference(t *testing.T) {
	_, err := model.NewBuilder("m").MustAdd(
		model.Element{ID: "if", Kind: model.KindInterface},
		model.Element{ID: "ac", Kind: model.KindAssemblyContext, Container: "if"},
	).Build()

	var ref *model.ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Contains(t, ref.Error(), "has kind interface")
}

func TestBuilder_SuccessorMustBeAction(t *testing.T) {
	_, err := model.NewBuilder("m").MustAdd(
		model.Element{ID: "us", Kind: model.KindUsageScenario},
		model.Element{ID: "if", Kind: model.KindInterface},
		model.Element{ID: "x", Kind: model.KindStart, Scope: "us", Successors: []ir.ElementID{"if"}},
	).Build()

	var ref *model.ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "next", ref.Field)
}

func TestBuilder_AddCopiesSlices(t *testing.T) {
	succ := []ir.ElementID{"y"}
	b := model.NewBuilder("m").MustAdd(
		model.Element{ID: "us", Kind: model.KindUsageScenario},
		model.Element{ID: "x", Kind: model.KindStart, Scope: "us", Successors: succ},
		model.Element{ID: "y", Kind: model.KindStop, Scope: "us"},
	)
	succ[0] = "z"

	s, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []ir.ElementID{"y"}, s.Neighbors("x", model.Successor))
}

func TestKind_Predicates(t *testing.T) {
	assert.True(t, model.KindBranch.IsAction())
	assert.False(t, model.KindConnector.IsAction())
	assert.True(t, model.KindExternalCall.IsCallSite())
	assert.False(t, model.KindSetVariable.IsCallSite())
}

func TestRelation_String(t *testing.T) {
	assert.Equal(t, "connector_call_sites", model.ConnectorCallSites.String())
	assert.Equal(t, "unknown", model.Relation(99).String())
}
