package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadModel(t *testing.T) {
	store, err := LoadModel(warnAppPath)
	require.NoError(t, err)
	assert.Equal(t, "WarnApp", store.Name())
	assert.Len(t, store.Scenarios(), 2)
}

func TestLoadModel_ValidationFailure(t *testing.T) {
	path := t.TempDir() + "/broken.yaml"
	require.NoError(t, writeFile(path, "assemblies: [{id: ac}]\n"))

	_, err := LoadModel(path)

	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
	require.Len(t, modelErr.Errors, 1)
	assert.Equal(t, ErrNoContainer, modelErr.Errors[0].Code)
	assert.Contains(t, err.Error(), "1 validation error(s)")
	assert.Contains(t, err.Error(), "[E205]")
}

func TestLoadModel_Unreadable(t *testing.T) {
	_, err := LoadModel("does/not/exist.cue")
	assert.Error(t, err)
}
