package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/behaviorgo/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &testutil.SafeBuffer{}
	logs := &testutil.SafeBuffer{}
	testutil.DumpLogsOnFailure(t, logs)
	err := Execute(context.Background(), out, logs, args)
	return out.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	require.Error(t, err)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %T", err)
	assert.Equal(t, code, exitErr.Code, exitErr.Message)
	return exitErr
}

func TestExecute_UsageErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"--this-is-not-a-valid-flag"}, "unknown flag: --this-is-not-a-valid-flag"},
		{"unknown command", []string{"explode"}, `unknown command "explode"`},
		{"validate without paths", []string{"validate"}, "requires at least 1 arg"},
		{"dump with two paths", []string{"dump", "a.json", "b.json"}, "accepts 1 arg"},
		{"bad log level", []string{"--log-level", "loud", "validate", "x.json"}, "invalid log-level"},
		{"bad log format", []string{"--log-format", "xml", "dump", "x.json"}, "invalid log-format"},
		{"run without target", []string{"run"}, "exactly one of PATH or --tree"},
		{"run with both targets", []string{"run", "a.json", "--tree", "a"}, "exactly one of PATH or --tree"},
		{"catalog without db", []string{"catalog", "list"}, "require --db"},
		{"negative ticks", []string{"run", "a.json", "--ticks", "-1"}, "invalid ticks"},
		{"malformed watch address", []string{"run", "a.json", "--watch", "tree..x"}, "invalid watch address"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			exitErr := requireExitCode(t, err, ExitUsage)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestExecute_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "validate")
	assert.Contains(t, out, "catalog")
	assert.Contains(t, out, ".json, .hcl, .yaml or .yml")
}

func TestExecute_Validate(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"good.json": `{"name": "good", "root": {"type": "succeed"}}`,
		"bad.hcl":   "node \"inverter\" {}\n",
	})

	out, err := execute(t, "--root", dir, "validate", "good.json")
	require.NoError(t, err)
	assert.Contains(t, out, "OK   good.json")

	out, err = execute(t, "--root", dir, "validate", ".")
	requireExitCode(t, err, ExitFailure)
	assert.Contains(t, out, "FAIL bad.hcl")
	assert.Contains(t, out, "takes exactly 1 child")
}

func TestExecute_Dump(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"t.hcl": "name = \"t\"\nnode \"wait\" {\n  duration = \"1s\"\n}\n",
	})

	out, err := execute(t, "--root", dir, "dump", "t.hcl")
	require.NoError(t, err)
	assert.Contains(t, out, `"duration"`)
	assert.Contains(t, out, `"1s"`)

	_, err = execute(t, "--root", dir, "dump", "t.toml")
	exitErr := requireExitCode(t, err, ExitFailure)
	assert.Contains(t, exitErr.Message, "unsupported tree file format")
}

func TestExecute_Run(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"loop.json": `{"root": {"type": "repeater", "properties": {"count": 2}, "child": {"type": "succeed"}}}`,
		"fail.json": `{"root": {"type": "fail"}}`,
	})

	out, err := execute(t, "--root", dir, "run", "loop.json", "--interval", "0")
	require.NoError(t, err)
	assert.Equal(t, "tick 1: running\ntick 2: success\n", out)

	out, err = execute(t, "--root", dir, "run", "loop.json", "--interval", "0", "--ticks", "1")
	require.NoError(t, err)
	assert.Equal(t, "tick 1: running\n", out)

	out, err = execute(t, "--root", dir, "run", "loop.json", "--ticks", "1", "--trace")
	require.NoError(t, err)
	assert.Equal(t, "tick 1: running\n  tree: running\n  tree.succeed[0]: success\n", out)

	out, err = execute(t, "--root", dir, "run", "loop.json", "--ticks", "1", "--watch", "tree.succeed[0]")
	require.NoError(t, err)
	assert.Equal(t, "tick 1: running\n  tree.succeed[0]: success\n", out)

	_, err = execute(t, "--root", dir, "run", "fail.json")
	requireExitCode(t, err, ExitFailure)
}

func TestExecute_Catalog(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"trees/a.json": `{"name": "alpha", "root": {"type": "succeed"}}`,
		"trees/b.hcl":  "name = \"beta\"\nnode \"subtree\" {\n  tree = \"alpha\"\n}\n",
	})
	db := filepath.Join(t.TempDir(), "catalog.db")

	out, err := execute(t, "--root", dir, "--db", db, "catalog", "import", "trees/a.json")
	require.NoError(t, err)
	assert.Contains(t, out, "imported alpha from trees/a.json")

	_, err = execute(t, "--root", dir, "--db", db, "catalog", "import", "trees/b.hcl")
	require.NoError(t, err)

	out, err = execute(t, "--db", db, "catalog", "list")
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^alpha\t`, out)
	assert.Regexp(t, `(?m)^beta\t`, out)

	out, err = execute(t, "--db", db, "run", "--tree", "beta", "--interval", "0")
	require.NoError(t, err)
	assert.Equal(t, "tick 1: success\n", out)

	_, err = execute(t, "--db", db, "catalog", "delete", "alpha")
	require.NoError(t, err)

	_, err = execute(t, "--db", db, "catalog", "delete", "alpha")
	exitErr := requireExitCode(t, err, ExitFailure)
	assert.Contains(t, exitErr.Message, "tree not found")
}
