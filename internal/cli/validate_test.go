package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidModel(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), warnAppModel)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Model WarnApp valid")
}

func TestValidateValidModelJSON(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), warnAppModel)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "WarnApp", resp.Data.Model)
	assert.Positive(t, resp.Data.Elements)
	assert.Empty(t, resp.Data.Warnings)
}

func TestValidateReportsCycles(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), loopModel)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Model Retry valid")
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "w_try")
}

func TestValidateInvalidModel(t *testing.T) {
	path := writeFile(t, "broken.yaml", "assemblies: [{id: ac}]\n")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E205")
}

func TestValidateInvalidModelJSON(t *testing.T) {
	path := writeFile(t, "broken.yaml", "assemblies: [{id: ac}]\n")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E205", resp.Error.Code)
}

func TestValidateUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "model.txt", "hello")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "unsupported model file extension")
}

func TestValidateNonExistentModel(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/model.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestValidateMissingArgs(t *testing.T) {
	_, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
