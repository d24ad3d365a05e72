package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDir = "../../testdata/scenarios"

// writeScenario writes a scenario file next to a copy of the warn-app model.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	model, err := filepath.Abs("../../testdata/models/warnapp.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.yaml"), mustRead(t, model), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenarioDir, "warnapp_intercepted.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "warnapp_intercepted", s.Name)
	assert.Equal(t, "Scenario 1", s.Title)
	assert.Equal(t, filepath.Join(scenarioDir, "..", "models", "warnapp.yaml"), s.Model)
	require.Len(t, s.Assumptions, 2)
	assert.Equal(t, []string{"rc_edge", "stale-id"}, s.Assumptions[1].Entities)
	assert.Equal(t, []int{0, 1}, s.Expect.Distinct)
	assert.Equal(t, []string{"a_token", "d_write"}, s.Expect.Violations[0])
	assert.NotNil(t, s.Expect.NotAffected)
}

func TestLoadScenario_EmptyListsAreChecked(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenarioDir, "warnapp_component.yaml"))
	require.NoError(t, err)

	assert.NotNil(t, s.Expect.Violations)
	assert.Empty(t, s.Expect.Violations)
	assert.NotNil(t, s.Expect.Skipped)
	assert.Equal(t, []int{0, 1, 0, 1}, s.Expect.Impacted)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: d\nmodel: model.yaml\nexpects: {}\n",
			wantErr: "field expects not found",
		},
		{
			name:    "missing name",
			content: "description: d\nmodel: model.yaml\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nmodel: model.yaml\n",
			wantErr: "description is required",
		},
		{
			name:    "missing model",
			content: "name: x\ndescription: d\n",
			wantErr: "model is required",
		},
		{
			name:    "model not found",
			content: "name: x\ndescription: d\nmodel: nope.yaml\n",
			wantErr: "model file not found",
		},
		{
			name:    "assumption without id",
			content: "name: x\ndescription: d\nmodel: model.yaml\nassumptions: [{entities: [ac_app]}]\n",
			wantErr: "assumptions[0]: id is required",
		},
		{
			name:    "duplicate assumption",
			content: "name: x\ndescription: d\nmodel: model.yaml\nassumptions: [{id: a, entities: [x]}, {id: a, entities: [y]}]\n",
			wantErr: `assumptions[1]: duplicate id "a"`,
		},
		{
			name:    "assumption without entities",
			content: "name: x\ndescription: d\nmodel: model.yaml\nassumptions: [{id: a}]\n",
			wantErr: "entities list is required",
		},
		{
			name:    "negative index",
			content: "name: x\ndescription: d\nmodel: model.yaml\nexpect: {distinct: [-1]}\n",
			wantErr: "expect.distinct[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("does/not/exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
