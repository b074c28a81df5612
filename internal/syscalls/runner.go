// Package syscalls finds out which Linux system calls a program uses, either
// statically from its disassembly or dynamically by tracing it.
package syscalls

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Command is an external tool invocation. A nil writer discards the stream.
type Command struct {
	Name   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands on the local machine.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("error executing %s: %w", c.Name, err)
	}
	return nil
}

// Disassemble returns the output of objdump -d for binary.
func Disassemble(ctx context.Context, runner Runner, binary string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := runner.Run(ctx, Command{
		Name:   "objdump",
		Args:   []string{"-d", binary},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return "", withStderr(err, stderr.String())
	}
	return stdout.String(), nil
}

// Trace runs command under strace -c and returns strace's report. The
// traced program's own stdout is discarded.
func Trace(ctx context.Context, runner Runner, command []string) (string, error) {
	if len(command) == 0 {
		return "", fmt.Errorf("no command to trace")
	}
	var stderr bytes.Buffer
	err := runner.Run(ctx, Command{
		Name:   "strace",
		Args:   append([]string{"-c", "-U", "syscall"}, command...),
		Stderr: &stderr,
	})
	if err != nil {
		return "", withStderr(err, stderr.String())
	}
	return stderr.String(), nil
}

func withStderr(err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, stderr)
}
