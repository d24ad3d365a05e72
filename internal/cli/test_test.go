package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abunai/impact/internal/harness"
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandUpdateRequiresGolden(t *testing.T) {
	_, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), t.TempDir(), "--update")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandScenarios(t *testing.T) {
	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 0 skipped, 3 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenariosDir, "--filter", "retry")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 2 skipped, 1 total")
}

func TestTestCommandJSON(t *testing.T) {
	out, _, err := execute(NewTestCommand(&RootOptions{Format: "json"}), scenariosDir, "--filter", "warnapp")
	require.NoError(t, err)

	var resp struct {
		Status string              `json:"status"`
		Data   harness.SuiteResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
}

func TestTestCommandGoldenUpdateThenCompare(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden")

	_, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}),
		scenariosDir, "--golden", golden, "--update")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(golden, "warnapp_intercepted.golden"))
	require.NoError(t, err)

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenariosDir, "--golden", golden)
	require.NoError(t, err)
	assert.Contains(t, out, "3 passed")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	model, err := filepath.Abs(warnAppModel)
	require.NoError(t, err)
	scenario := `name: wrong
description: expects an impact that never happens
model: ` + model + `
assumptions:
  - id: a1
    description: "DataConstraints: Personal"
    entities: [con_store]
expect:
  affected: [m_check]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(scenario), 0o644))

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "0 passed, 1 failed")
}
