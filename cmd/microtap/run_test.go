package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func executeCommand(args ...string) (stdout, stderr string, err error) {
	root := newRootCmd()
	outBuf, errBuf := &bytes.Buffer{}, &bytes.Buffer{}
	root.SetOut(outBuf)
	root.SetErr(errBuf)
	root.SetArgs(args)

	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writePlans(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

const (
	okPlan   = "plans:\n  - description: boot\n    points:\n      - description: kernel\n        run: [\"true\"]\n"
	failPlan = "plans:\n  - description: net\n    points:\n      - description: dhcp\n        run: [\"false\"]\n"
)

func TestRunCommand_SinglePlan(t *testing.T) {
	dir := writePlans(t, map[string]string{"test_boot.yaml": okPlan})

	stdout, _, err := executeCommand("run", dir, "--log-level", "error")
	require.NoError(t, err)
	require.Equal(t, "TAP version 14\n1..1\nok 1 - kernel\n", stdout)
}

func TestRunCommand_FailureExitStatus(t *testing.T) {
	dir := writePlans(t, map[string]string{
		"test_boot.yaml": okPlan,
		"test_net.yaml":  failPlan,
	})

	stdout, _, err := executeCommand("run", dir, "--no-root-plan", "--log-level", "error")
	var exit *exitError
	require.True(t, errors.As(err, &exit), "got %v", err)
	require.Equal(t, 1, exit.code)
	require.Equal(t, "TAP version 14\n"+
		"# Tests for test_boot.yaml\n    1..1\n    ok 1 - kernel\n"+
		"# Tests for test_net.yaml\n    1..1\n    not ok 1 - dhcp\n", stdout)
}

func TestRunCommand_OutputFileAndSummary(t *testing.T) {
	dir := writePlans(t, map[string]string{"test_boot.yaml": okPlan})
	out := filepath.Join(t.TempDir(), "report.tap")

	stdout, stderr, err := executeCommand("run", dir, "--output", out, "--summary", "--log-level", "error")
	require.NoError(t, err)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "test_boot.yaml")
	require.Contains(t, stderr, "TOTAL")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "TAP version 14\n1..1\nok 1 - kernel\n", string(data))
}

func TestRunCommand_ConfigFile(t *testing.T) {
	dir := writePlans(t, map[string]string{
		".microtap":      "root_plan: false\npattern: \"*.plan\"\nstore_dir: runs\nlog:\n  level: error\n",
		"boot.plan":      okPlan,
		"test_boot.yaml": failPlan,
	})
	t.Chdir(dir)

	stdout, _, err := executeCommand("run")
	require.NoError(t, err)
	require.Equal(t, "TAP version 14\n1..1\nok 1 - kernel\n", stdout)

	entries, err := os.ReadDir(filepath.Join(dir, "runs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRunCommand_LogsToStderr(t *testing.T) {
	dir := writePlans(t, map[string]string{"test_boot.yaml": okPlan})

	stdout, stderr, err := executeCommand("run", dir, "--log-level", "info")
	require.NoError(t, err)
	require.NotContains(t, stdout, "session")
	require.Contains(t, stderr, `"message":"session finished"`)
}

func TestRunCommand_BadLogLevel(t *testing.T) {
	dir := writePlans(t, map[string]string{"test_boot.yaml": okPlan})

	_, _, err := executeCommand("run", dir, "--log-level", "loud")
	require.Error(t, err)
	require.Contains(t, err.Error(), "creating logger")
}

func TestListCommand(t *testing.T) {
	dir := writePlans(t, map[string]string{
		"test_boot.yaml":   okPlan,
		"test_broken.yaml": "plans: [\n",
	})

	stdout, _, err := executeCommand("list", dir, "--log-level", "error")
	require.NoError(t, err)
	require.Contains(t, stdout, "test_boot.yaml")
	require.Contains(t, stdout, "boot")
	require.Contains(t, stdout, "test_broken.yaml")
	require.Contains(t, stdout, "rejected")
}

func TestListCommand_Empty(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := executeCommand("list", dir, "--log-level", "error")
	require.NoError(t, err)
	require.Contains(t, stdout, "No plans found")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCommand("version")
	require.NoError(t, err)
	require.Regexp(t, `^microtap \d+\.\d+\.\d+\n$`, stdout)
}

func TestMCPCommand_Instructions(t *testing.T) {
	stdout, _, err := executeCommand("mcp", "--instructions")
	require.NoError(t, err)
	require.Contains(t, stdout, "tap_run")
}
