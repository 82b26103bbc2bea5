package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesPathsFromSDKSrcDir(t *testing.T) {
	root := t.TempDir()
	sdkSrc := filepath.Join(root, "native_client_sdk", "src")

	c, err := New(sdkSrc)
	require.NoError(t, err)

	assert.Equal(t, sdkSrc, c.SDKSrcDir)
	assert.Equal(t, root, c.SrcDir)
	assert.Equal(t, filepath.Join(root, "native_client"), c.NaClDir)
	assert.Equal(t, filepath.Join(root, "out"), c.OutDir)

	assert.Equal(t, DefaultPython, c.Toolchain.Python)
	assert.Equal(t, filepath.Join(root, "native_client", "build", "package_version", "package_version.py"),
		c.Toolchain.PackageVersionScript)
	assert.Equal(t, []string{"nacl_x86_glibc"}, c.Toolchain.Packages)
	assert.Equal(t, filepath.Join(root, "native_client", "toolchain", ".tars"), c.Toolchain.TarDir)
	assert.Equal(t, filepath.Join(root, "out", "sdk_tests", "toolchain"), c.Toolchain.DestDir)

	assert.Equal(t, ChromeMockBinaryName, filepath.Base(c.ChromeMockPath))
	assert.Equal(t, HarnessConfig{Host: DefaultHost}, c.Harness)
	assert.NoError(t, c.Validate())
}

func TestNewMakesRelativePathAbsolute(t *testing.T) {
	c, err := New(".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(c.SDKSrcDir))
}

func TestLoadFileOverridesOnlyWhatItMentions(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "native_client_sdk", "src"))
	require.NoError(t, err)
	defaults := c

	path := filepath.Join(t.TempDir(), "sdk-tests.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
chrome_mock_path = "/opt/bin/chrome_mock"

[toolchain]
python = "python3"
packages = ["nacl_x86_glibc", "pnacl_newlib"]

[harness]
port = 8111
`), 0644))

	require.NoError(t, c.LoadFile(path))

	assert.Equal(t, "/opt/bin/chrome_mock", c.ChromeMockPath)
	assert.Equal(t, "python3", c.Toolchain.Python)
	assert.Equal(t, []string{"nacl_x86_glibc", "pnacl_newlib"}, c.Toolchain.Packages)
	assert.Equal(t, 8111, c.Harness.Port)

	assert.Equal(t, defaults.SDKSrcDir, c.SDKSrcDir)
	assert.Equal(t, defaults.Toolchain.TarDir, c.Toolchain.TarDir)
	assert.Equal(t, defaults.Toolchain.DestDir, c.Toolchain.DestDir)
	assert.Equal(t, defaults.Harness.Host, c.Harness.Host)
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdk-tests.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadFileRederivesToolchainPathsFromOverlaidDirs(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "native_client_sdk", "src"))
	require.NoError(t, err)

	require.NoError(t, c.LoadFile(writeConfigFile(t, `
nacl_dir = "/elsewhere/native_client"
out_dir = "/elsewhere/out"
`)))

	assert.Equal(t, "/elsewhere/out", c.OutDir)
	assert.Equal(t, filepath.FromSlash("/elsewhere/out/sdk_tests/toolchain"), c.Toolchain.DestDir)
	assert.Equal(t, filepath.FromSlash("/elsewhere/native_client/toolchain/.tars"), c.Toolchain.TarDir)
	assert.Equal(t, filepath.FromSlash("/elsewhere/native_client/build/package_version/package_version.py"),
		c.Toolchain.PackageVersionScript)
}

func TestLoadFileRederivesEverythingFromSrcDir(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "native_client_sdk", "src"))
	require.NoError(t, err)

	require.NoError(t, c.LoadFile(writeConfigFile(t, `src_dir = "/chromium/src"`)))

	assert.Equal(t, filepath.FromSlash("/chromium/src/native_client"), c.NaClDir)
	assert.Equal(t, filepath.FromSlash("/chromium/src/out"), c.OutDir)
	assert.Equal(t, filepath.FromSlash("/chromium/src/out/sdk_tests/toolchain"), c.Toolchain.DestDir)
}

func TestLoadFileKeepsExplicitToolchainPaths(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "native_client_sdk", "src"))
	require.NoError(t, err)

	require.NoError(t, c.LoadFile(writeConfigFile(t, `
out_dir = "/elsewhere/out"

[toolchain]
dest_dir = "/fixtures/toolchain"
`)))

	assert.Equal(t, "/fixtures/toolchain", c.Toolchain.DestDir)
	assert.Equal(t, "/elsewhere/out", c.OutDir)
}

func TestLoadFileReportsParseErrors(t *testing.T) {
	var c Config
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("[toolchain\n"), 0644))

	err := c.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoadFileReportsMissingFile(t *testing.T) {
	var c Config
	assert.Error(t, c.LoadFile(filepath.Join(t.TempDir(), "missing.toml")))
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := Config{Harness: HarnessConfig{Port: -1}}

	err := c.Validate()
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 6)
}
