package orchestrate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result captures the outcome of one shell command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes a named shell command and reports exit code, stdout, and
// stderr. The returned error covers spawn failures only; a command that ran
// and exited nonzero is a Result, not an error.
type Runner interface {
	Run(ctx context.Context, command string) (Result, error)
}

// ShellRunner runs commands through a shell, so manifest entries can use
// pipes and environment expansion the way operators write them by hand.
type ShellRunner struct {
	// Shell is the interpreter. Defaults to /bin/sh.
	Shell string
}

// Run executes the command and blocks until it exits or the context is
// cancelled.
func (r ShellRunner) Run(ctx context.Context, command string) (Result, error) {
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("running %q: %w", command, err)
	}

	return result, nil
}
