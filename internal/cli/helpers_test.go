package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	warnAppModel  = "../../testdata/models/warnapp.yaml"
	loopModel     = "../../testdata/models/loop.cue"
	scenariosDir  = "../../testdata/scenarios"
	warnAppAssume = `assumptions:
  - id: a1
    type: CONNECTOR
    description: "DataConstraints: Personal"
    affected_entities:
      - id: con_store
  - id: a2
    type: RESOURCE_CONTAINER
    description: "NodeConstraints: EdgeNonEU"
    affected_entities:
      - id: rc_edge
      - id: stale-id
`
)

// writeFile writes content to name inside a temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
