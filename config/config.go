// Package config builds the settings for one test run. Defaults are derived from the location
// of the SDK source tree; a TOML file can override any of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
)

const (
	DefaultPython         = "python"
	DefaultHost           = "localhost"
	ChromeMockBinaryName  = "chrome_mock"
	defaultExtractPackage = "nacl_x86_glibc"
)

// Config is built once when the runner starts and is passed by value from then on.
type Config struct {
	// SDKSrcDir is native_client_sdk/src in a Chromium checkout.
	SDKSrcDir string `toml:"sdk_src_dir"`
	SrcDir    string `toml:"src_dir"`
	NaClDir   string `toml:"nacl_dir"`
	OutDir    string `toml:"out_dir"`

	// ChromeMockPath is the chrome_mock binary used by the process lifecycle tests.
	ChromeMockPath string `toml:"chrome_mock_path"`

	Toolchain ToolchainConfig `toml:"toolchain"`
	Harness   HarnessConfig   `toml:"harness"`
}

// ToolchainConfig describes the package_version invocation that unpacks toolchains for the
// tests that need real binaries.
type ToolchainConfig struct {
	Python               string   `toml:"python"`
	PackageVersionScript string   `toml:"package_version_script"`
	Packages             []string `toml:"packages"`
	TarDir               string   `toml:"tar_dir"`
	DestDir              string   `toml:"dest_dir"`
}

// HarnessConfig controls the listener that hosts mock endpoints.
type HarnessConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// New derives the default configuration from the SDK source directory.
func New(sdkSrcDir string) (Config, error) {
	abs, err := filepath.Abs(sdkSrcDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve SDK source dir %s: %w", sdkSrcDir, err)
	}

	c := Config{SDKSrcDir: abs}
	c.ChromeMockPath = defaultChromeMockPath()
	c.Toolchain = ToolchainConfig{
		Python:   DefaultPython,
		Packages: []string{defaultExtractPackage},
	}
	c.Harness = HarnessConfig{Host: DefaultHost}
	c.derivePaths(func(...string) bool { return false })
	return c, nil
}

// derivePaths fills in every path that depends on another one, skipping the paths for which
// isSet reports an explicit value. Parents are derived before their children.
func (c *Config) derivePaths(isSet func(key ...string) bool) {
	if !isSet("src_dir") {
		c.SrcDir = filepath.Dir(filepath.Dir(c.SDKSrcDir))
	}
	if !isSet("nacl_dir") {
		c.NaClDir = filepath.Join(c.SrcDir, "native_client")
	}
	if !isSet("out_dir") {
		c.OutDir = filepath.Join(c.SrcDir, "out")
	}
	if !isSet("toolchain", "package_version_script") {
		c.Toolchain.PackageVersionScript = filepath.Join(c.NaClDir, "build", "package_version", "package_version.py")
	}
	if !isSet("toolchain", "tar_dir") {
		c.Toolchain.TarDir = filepath.Join(c.NaClDir, "toolchain", ".tars")
	}
	if !isSet("toolchain", "dest_dir") {
		c.Toolchain.DestDir = filepath.Join(c.OutDir, "sdk_tests", "toolchain")
	}
}

// chrome_mock is expected next to the runner binary.
func defaultChromeMockPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ChromeMockBinaryName
	}
	return filepath.Join(filepath.Dir(exe), ChromeMockBinaryName)
}

// LoadFile overlays the settings found in a TOML file. Settings the file does not mention keep
// their current values, except derived paths: those are derived again from the overlaid
// directories, so setting out_dir alone also moves toolchain.dest_dir.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.derivePaths(md.IsDefined)
	return nil
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var merr *multierror.Error
	if len(c.Toolchain.Packages) == 0 {
		merr = multierror.Append(merr, errors.New("toolchain.packages must name at least one package"))
	}
	if c.Toolchain.Python == "" {
		merr = multierror.Append(merr, errors.New("toolchain.python must not be empty"))
	}
	if c.Toolchain.PackageVersionScript == "" {
		merr = multierror.Append(merr, errors.New("toolchain.package_version_script must not be empty"))
	}
	if c.Toolchain.TarDir == "" {
		merr = multierror.Append(merr, errors.New("toolchain.tar_dir must not be empty"))
	}
	if c.Toolchain.DestDir == "" {
		merr = multierror.Append(merr, errors.New("toolchain.dest_dir must not be empty"))
	}
	if c.Harness.Port < 0 || c.Harness.Port > 65535 {
		merr = multierror.Append(merr, fmt.Errorf("harness.port %d is out of range", c.Harness.Port))
	}
	return merr.ErrorOrNil()
}
