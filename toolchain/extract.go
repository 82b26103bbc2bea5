// Package toolchain unpacks the prebuilt toolchains that some SDK tests need. The unpacking itself
// is done by the external package_version tool; this package only builds and runs its command line.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/naclsdk/sdk-tests/config"
	"github.com/naclsdk/sdk-tests/framework"
)

// ExtractError is returned when the extraction tool ran but exited with a non-zero status.
type ExtractError struct {
	CommandLine string
	ExitCode    int
	Output      string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("toolchain extraction failed with exit code %d: %s", e.ExitCode, e.CommandLine)
}

type Extractor struct {
	config config.ToolchainConfig
	logger framework.Logger

	// Stderr receives the tool's standard error. It defaults to the runner's own stderr.
	Stderr io.Writer
}

func NewExtractor(cfg config.ToolchainConfig, logger framework.Logger) *Extractor {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Extractor{config: cfg, logger: logger, Stderr: os.Stderr}
}

// Args returns the full argv of the extraction command, interpreter first.
func (e *Extractor) Args() []string {
	return []string{
		e.config.Python,
		e.config.PackageVersionScript,
		"--packages", strings.Join(e.config.Packages, ","),
		"--tar-dir", e.config.TarDir,
		"--dest-dir", e.config.DestDir,
		"extract",
	}
}

func (e *Extractor) CommandLine() string {
	return framework.CommandLine(e.Args()...)
}

// Extract runs the tool and blocks until it exits. There is no retry.
func (e *Extractor) Extract(ctx context.Context) error {
	args := e.Args()
	e.logger.Printf("Running %s", e.CommandLine())

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()
	if stdout.Len() > 0 {
		e.logger.Printf("Extraction output:\n%s", strings.TrimRight(stdout.String(), "\n"))
	}
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExtractError{
			CommandLine: e.CommandLine(),
			ExitCode:    exitErr.ExitCode(),
			Output:      stdout.String(),
		}
	}
	return fmt.Errorf("failed to run %s: %w", e.CommandLine(), err)
}
