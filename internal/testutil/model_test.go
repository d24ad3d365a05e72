package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarnApp_Builds(t *testing.T) {
	s, err := WarnAppBuilder().Build()
	require.NoError(t, err)

	assert.Equal(t, "WarnApp", s.Name())
	assert.Len(t, s.Scenarios(), 2)
}

func TestAssume(t *testing.T) {
	a := Assume("a1", "desc", App, "missing")

	assert.Equal(t, "a1", a.ID)
	assert.Len(t, a.AffectedEntities, 2)
	assert.Equal(t, "missing", a.AffectedEntities[1].ID)
	assert.False(t, a.Analyzed)
}
