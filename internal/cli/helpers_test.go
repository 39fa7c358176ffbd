package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	t         *testing.T
	ConfigDir string
	DataDir   string
}

// result captures one command run.
type result struct {
	Stdout string
	Stderr string
	Err    error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	return &testEnv{
		t:         t,
		ConfigDir: filepath.Join(root, "config"),
		DataDir:   filepath.Join(root, "data"),
	}
}

// run executes the rolodex command tree in process with stdin as input.
func (e *testEnv) runWithInput(stdin string, args ...string) result {
	e.t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config-dir", e.ConfigDir, "--data-dir", e.DataDir}, args...))
	err := cmd.Execute()
	return result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	return e.runWithInput("", args...)
}

// mustRun runs the command and fails the test on error.
func (e *testEnv) mustRun(args ...string) result {
	e.t.Helper()
	r := e.run(args...)
	require.NoError(e.t, r.Err, "rolodex %v\nstdout: %s\nstderr: %s", args, r.Stdout, r.Stderr)
	return r
}

// readData returns the content of a file in the data directory, or "" when
// it does not exist.
func (e *testEnv) readData(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.DataDir, name))
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(e.t, err)
	return string(data)
}

// parseJSON decodes command output into T.
func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}
