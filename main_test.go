//go:build !windows
// +build !windows

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naclsdk/sdk-tests/framework"
)

// fakePackageVersion stands in for the interpreter running package_version.py. It creates a
// directory for every requested package under --dest-dir unless told to extract nothing, and
// exits with the given code.
const fakePackageVersion = `#!/bin/sh
extract=%t
while [ $# -gt 0 ]; do
  case "$1" in
    --packages) packages="$2"; shift ;;
    --dest-dir) dest="$2"; shift ;;
  esac
  shift
done
mkdir -p "$dest"
if [ "$extract" = true ]; then
  for p in $(echo "$packages" | tr ',' ' '); do
    mkdir -p "$dest/linux_x86/$p"
  done
fi
exit %d
`

func writeTestConfig(t *testing.T, extract bool, exitCode int) (configPath, dest string) {
	t.Helper()
	dir := t.TempDir()
	tool := filepath.Join(dir, "fake-python")
	require.NoError(t, ioutil.WriteFile(tool, []byte(fmt.Sprintf(fakePackageVersion, extract, exitCode)), 0755))
	dest = filepath.Join(dir, "toolchain")
	configPath = filepath.Join(dir, "sdk-tests.toml")
	require.NoError(t, ioutil.WriteFile(configPath, []byte(fmt.Sprintf(`
[toolchain]
python = %q
dest_dir = %q
`, tool, dest)), 0644))
	return configPath, dest
}

func runMain(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"sdk-tests"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunPassesAndWritesReports(t *testing.T) {
	configPath, _ := writeTestConfig(t, true, 0)
	reports := t.TempDir()
	junit := filepath.Join(reports, "junit.xml")
	summary := filepath.Join(reports, "summary.json")

	code, stdout, _ := runMain(
		"--config", configPath,
		"--chrome-mock", filepath.Join(t.TempDir(), "missing"),
		"--junit", junit,
		"--json-summary", summary,
	)
	assert.Equal(t, 0, code, stdout)

	extracting := strings.Index(stdout, "Extracting toolchains...")
	running := strings.Index(stdout, "Running unittests...")
	require.True(t, extracting >= 0 && running > extracting, stdout)
	assert.Contains(t, stdout, "chrome_mock binary not found")
	assert.Contains(t, stdout, "OK (skipped=1)")

	xml, err := ioutil.ReadFile(junit)
	require.NoError(t, err)
	assert.Contains(t, string(xml), "<testsuites")
	json, err := ioutil.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(json), `"ok":true`)
}

func TestRunFailsWhenExtractionFails(t *testing.T) {
	configPath, _ := writeTestConfig(t, true, 1)

	code, stdout, _ := runMain("--config", configPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Extracting toolchains...")
	assert.NotContains(t, stdout, "Running unittests...")
}

func TestRunFailsWhenATestFails(t *testing.T) {
	configPath, _ := writeTestConfig(t, false, 0)

	code, stdout, _ := runMain("--config", configPath, "--run", "toolchain_test")
	assert.Equal(t, 1, code, stdout)
	assert.Contains(t, stdout, "FAILED")
	assert.Contains(t, stdout, "toolchain_test/destination directory is populated")
}

func TestRunWithFilterMatchingNothing(t *testing.T) {
	configPath, _ := writeTestConfig(t, true, 0)

	code, stdout, _ := runMain("--config", configPath, "--run", "nothing matches")
	assert.Equal(t, 0, code, stdout)
	assert.Contains(t, stdout, "skip any not matching")
	assert.Contains(t, stdout, "Ran 0 tests")
}

func TestRunRejectsBadParameters(t *testing.T) {
	code, _, stderr := runMain("--run", "(")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Invalid parameters")

	code, _, stderr = runMain("stray")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unexpected arguments")
}

func TestRunRejectsBrokenConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("[toolchain\n"), 0644))

	code, stdout, _ := runMain("--config", path)
	assert.Equal(t, 1, code)
	assert.NotContains(t, stdout, "Extracting toolchains...")
}

func TestConsoleTestLogger(t *testing.T) {
	id := framework.TestID{}.Plus("chrome_mock_test").Plus("usage")

	t.Run("terse mode prints only problems", func(t *testing.T) {
		var out bytes.Buffer
		logger := &ConsoleTestLogger{Out: &out}
		logger.TestStarted(id)
		logger.TestFinished(id, false, nil)
		logger.TestSkipped(id, framework.ExcludedByFilterReason)
		assert.Empty(t, out.String())

		logger.TestError(id, errors.New("line one\nline two"))
		logger.TestFinished(id, true, nil)
		assert.True(t, strings.HasPrefix(out.String(), "[chrome_mock_test/usage]\n  line one\n  line two\n"), out.String())
		assert.Contains(t, out.String(), "FAILED")
		assert.Equal(t, 1, strings.Count(out.String(), "[chrome_mock_test/usage]"))
	})

	t.Run("verbose mode announces every test", func(t *testing.T) {
		var out bytes.Buffer
		logger := &ConsoleTestLogger{Out: &out, Verbose: true}
		logger.TestStarted(id)
		logger.TestFinished(id, false, nil)
		assert.Contains(t, out.String(), "[chrome_mock_test/usage]")
		assert.Contains(t, out.String(), "ok")
	})

	t.Run("skip reason is shown", func(t *testing.T) {
		var out bytes.Buffer
		logger := &ConsoleTestLogger{Out: &out}
		logger.TestSkipped(id, "chrome_mock binary not found")
		assert.Contains(t, out.String(), "SKIPPED")
		assert.Contains(t, out.String(), "(chrome_mock binary not found)")
	})

	t.Run("debug output on failure", func(t *testing.T) {
		var out bytes.Buffer
		logger := &ConsoleTestLogger{Out: &out, DebugOutputOnFailure: true}
		logger.TestFinished(id, true, framework.CapturedOutput{{Message: "request received"}})
		assert.Contains(t, out.String(), "DEBUG")
		assert.Contains(t, out.String(), "request received")
	})
}
