package sdktests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naclsdk/sdk-tests/config"
	"github.com/naclsdk/sdk-tests/framework"
)

func runToolchainModule(t *testing.T, dest string, packages ...string) framework.Results {
	cfg := config.Config{Toolchain: config.ToolchainConfig{DestDir: dest, Packages: packages}}
	modules, err := DefaultRegistry().Resolve([]string{"toolchain_test"})
	require.NoError(t, err)
	return RunModules(nil, cfg, modules, nil, nil)
}

func TestToolchainModulePassesWhenPackagesAreExtracted(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "linux_x86", "nacl_x86_glibc", "bin"), 0755))

	results := runToolchainModule(t, dest, "nacl_x86_glibc")
	assert.True(t, results.OK())
	assert.Len(t, results.Tests, 3)
}

func TestToolchainModuleFailsOnEmptyDestination(t *testing.T) {
	results := runToolchainModule(t, t.TempDir(), "nacl_x86_glibc")
	require.Len(t, results.Failures, 2)
	assert.Equal(t, "toolchain_test/destination directory is populated", results.Failures[0].TestID.String())
	assert.Equal(t, "toolchain_test/package nacl_x86_glibc is extracted", results.Failures[1].TestID.String())
}

func TestToolchainModuleFailsOnMissingDestination(t *testing.T) {
	results := runToolchainModule(t, filepath.Join(t.TempDir(), "missing"), "nacl_x86_glibc")
	assert.False(t, results.OK())
}

func TestToolchainModuleFailsOnMissingPackage(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "pnacl_newlib"), 0755))

	results := runToolchainModule(t, dest, "nacl_x86_glibc")
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "toolchain_test/package nacl_x86_glibc is extracted", results.Failures[0].TestID.String())
}

func TestFindDirIgnoresFilesWithTheSameName(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "nacl_x86_glibc"), nil, 0644))

	path, err := findDir(dest, "nacl_x86_glibc")
	require.NoError(t, err)
	assert.Empty(t, path)
}
