// Package sdktests contains the SDK test modules, the registry that names them, and the runner
// that prepares the toolchain fixture and runs every module as one suite.
//
// Infrastructure that is not specific to the SDK, such as subtest bookkeeping, mock endpoints
// and child processes, is in the lower-level framework package.
package sdktests
