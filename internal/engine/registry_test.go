package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abunai/impact/internal/ir"
	"github.com/abunai/impact/internal/testutil"
)

func TestRegistry_InsertionOrder(t *testing.T) {
	r := NewRegistry(NewClassifier(testutil.WarnApp()), nil)

	_, ok := r.Register(testutil.Edge)
	assert.True(t, ok)
	_, ok = r.Register(testutil.StoreConnector)
	assert.True(t, ok)

	sources := r.Sources()
	assert.Equal(t, testutil.Edge, sources[0].ID)
	assert.Equal(t, ir.ResourceContainer, sources[0].Category)
	assert.Equal(t, testutil.StoreConnector, sources[1].ID)
	assert.Equal(t, ir.Connector, sources[1].Category)
}

func TestRegistry_UnclassifiedIsNoOp(t *testing.T) {
	r := NewRegistry(NewClassifier(testutil.WarnApp()), nil)

	src, ok := r.Register("missing")
	assert.False(t, ok)
	assert.Equal(t, ir.Unclassified, src.Category)

	_, ok = r.Register("a_start")
	assert.False(t, ok)

	assert.Empty(t, r.Sources())
	assert.Equal(t, []ir.ElementID{"missing", "a_start"}, r.Skipped())
}

func TestRegistry_ReRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry(NewClassifier(testutil.WarnApp()), nil)

	first, _ := r.Register(testutil.App)
	second, ok := r.Register(testutil.App)

	assert.True(t, ok)
	assert.Equal(t, first, second)
	assert.Len(t, r.Sources(), 1)
}

func TestRegistry_RegisterAssumption(t *testing.T) {
	r := NewRegistry(NewClassifier(testutil.WarnApp()), nil)
	a := testutil.Assume("a1", "", "missing", testutil.App)

	r.RegisterAssumption(a)

	assert.True(t, a.Analyzed)
	assert.Len(t, r.Sources(), 1)
	assert.Equal(t, []ir.ElementID{"missing"}, r.Skipped())
}

func TestRegistry_RegisterNilAssumption(t *testing.T) {
	r := NewRegistry(NewClassifier(testutil.WarnApp()), nil)

	assert.NotPanics(t, func() { r.RegisterAssumption(nil) })
	assert.Empty(t, r.Sources())
	assert.Empty(t, r.Skipped())
}

func TestRegistry_SourcesReturnsCopy(t *testing.T) {
	r := NewRegistry(NewClassifier(testutil.WarnApp()), nil)
	r.Register(testutil.App)

	s := r.Sources()
	s[0].ID = "mutated"

	assert.Equal(t, testutil.App, r.Sources()[0].ID)
}
