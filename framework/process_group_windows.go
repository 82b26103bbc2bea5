package framework

import (
	"os"
	"os/exec"
)

func setProcessGroup(*exec.Cmd) {}

func killProcessGroup(process *os.Process) error {
	return process.Signal(os.Kill)
}
