package framework

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/alessio/shellescape"
)

const outputDrainTimeout = time.Second

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// CommandLine renders args as a command line that can be pasted into a shell.
func CommandLine(args ...string) string {
	var b commandBuilder
	b.add(args...)
	return b.String()
}

// ChildProcess is a subprocess whose standard output is collected line by line, so that a test
// can wait for marker lines, terminate the process at a chosen moment, and then inspect
// everything the process printed before it went away.
type ChildProcess struct {
	cmd       *exec.Cmd
	lines     chan string
	output    []string
	stderr    lockedBuffer
	done      chan struct{}
	waitErr   error
	startTime time.Time
	exitTime  time.Time
	logger    Logger
	lock      sync.Mutex
}

type lockedBuffer struct {
	buf  bytes.Buffer
	lock sync.Mutex
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

// StartChildProcess starts name with args in its own process group. Output lines are logged to
// logger as they arrive.
//
// Exit is detected as soon as the process itself exits, even if descendants that inherited its
// output are still running. Output still arriving at that point is collected for up to
// outputDrainTimeout before Wait returns.
func StartChildProcess(logger Logger, name string, args ...string) (*ChildProcess, error) {
	if logger == nil {
		logger = NullLogger()
	}
	p := &ChildProcess{
		cmd:    exec.Command(name, args...),
		lines:  make(chan string, 1000),
		done:   make(chan struct{}),
		logger: logger,
	}
	setProcessGroup(p.cmd)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, err
	}
	p.cmd.Stdout = stdoutW
	p.cmd.Stderr = stderrW

	logger.Printf("Starting: %s", CommandLine(append([]string{name}, args...)...))
	p.startTime = time.Now()
	err = p.cmd.Start()
	stdoutW.Close()
	stderrW.Close()
	if err != nil {
		stdoutR.Close()
		stderrR.Close()
		return nil, fmt.Errorf("could not start %s: %w", name, err)
	}

	var drained sync.WaitGroup
	drained.Add(2)
	go func() {
		defer drained.Done()
		defer stderrR.Close()
		_, _ = io.Copy(&p.stderr, stderrR)
	}()
	go func() {
		defer drained.Done()
		defer stdoutR.Close()
		scanner := bufio.NewScanner(stdoutR)
		for scanner.Scan() {
			line := scanner.Text()
			logger.Printf("stdout: %s", line)
			p.lock.Lock()
			p.output = append(p.output, line)
			p.lock.Unlock()
			select {
			case p.lines <- line:
			default:
			}
		}
		close(p.lines)
	}()

	outputDone := make(chan struct{})
	go func() {
		drained.Wait()
		close(outputDone)
	}()

	go func() {
		err := p.cmd.Wait()
		p.lock.Lock()
		p.waitErr = err
		p.exitTime = time.Now()
		p.lock.Unlock()
		logger.Printf("Process %d exited after %s: %v", p.cmd.Process.Pid, p.Runtime(), err)

		drainTimer := time.NewTimer(outputDrainTimeout)
		defer drainTimer.Stop()
		select {
		case <-outputDone:
		case <-drainTimer.C:
			logger.Printf("Output of process %d is still open after it exited", p.cmd.Process.Pid)
		}
		close(p.done)
	}()

	return p, nil
}

// AwaitLine waits until the process prints a line for which match returns true. Lines that
// do not match are consumed but remain available from Output.
func (p *ChildProcess) AwaitLine(match func(string) bool, timeout time.Duration) (string, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case line, ok := <-p.lines:
			if !ok {
				return "", errors.New("process closed its output before printing the expected line")
			}
			if match(line) {
				return line, nil
			}
		case <-deadline.C:
			return "", fmt.Errorf("timed out after %s waiting for output line; output so far: %q", timeout, p.Output())
		}
	}
}

// LineEquals returns a matcher for AwaitLine.
func LineEquals(expected string) func(string) bool {
	return func(line string) bool { return line == expected }
}

// LineHasPrefix returns a matcher for AwaitLine.
func LineHasPrefix(prefix string) func(string) bool {
	return func(line string) bool { return strings.HasPrefix(line, prefix) }
}

// Output returns every line printed to standard output so far.
func (p *ChildProcess) Output() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.output...)
}

// CountLines returns how many output lines equal s.
func (p *ChildProcess) CountLines(s string) int {
	n := 0
	for _, line := range p.Output() {
		if line == s {
			n++
		}
	}
	return n
}

// Stderr returns everything printed to standard error so far.
func (p *ChildProcess) Stderr() string {
	return p.stderr.String()
}

// Kill terminates the process and every process in its group immediately. Killing a process
// that has already exited is not an error.
func (p *ChildProcess) Kill() error {
	p.logger.Printf("Killing process %d", p.cmd.Process.Pid)
	err := killProcessGroup(p.cmd.Process)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// Wait blocks until the process has exited or the timeout elapses, and returns the result of
// exec.Cmd.Wait.
func (p *ChildProcess) Wait(timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case <-p.done:
		p.lock.Lock()
		defer p.lock.Unlock()
		return p.waitErr
	case <-deadline.C:
		return fmt.Errorf("process %d did not exit within %s", p.cmd.Process.Pid, timeout)
	}
}

// Exited reports whether the process has already exited.
func (p *ChildProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the exit code of a process that has exited, or -1 if it is still running
// or was terminated by a signal.
func (p *ChildProcess) ExitCode() int {
	if !p.Exited() {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}

// Runtime returns how long the process ran, or how long it has been running so far.
func (p *ChildProcess) Runtime() time.Duration {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.exitTime.IsZero() {
		return time.Since(p.startTime)
	}
	return p.exitTime.Sub(p.startTime)
}
