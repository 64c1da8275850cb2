package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrPhaseNotFound is returned when the manifest has no phase by that name.
var ErrPhaseNotFound = errors.New("orchestrate: phase not found")

// ErrStepFailed is returned when a step command exits nonzero or cannot
// be spawned.
var ErrStepFailed = errors.New("orchestrate: step failed")

// Logger defines the logging interface for the executor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Executor runs manifest phases through a Runner.
type Executor struct {
	manifest *Manifest
	runner   Runner
	logger   Logger
	out      io.Writer
}

// NewExecutor creates an Executor over the manifest. A nil runner defaults
// to ShellRunner.
func NewExecutor(manifest *Manifest, runner Runner) *Executor {
	if runner == nil {
		runner = ShellRunner{}
	}
	return &Executor{
		manifest: manifest,
		runner:   runner,
		logger:   noopLogger{},
		out:      os.Stdout,
	}
}

// SetLogger sets the logger for the executor.
func (e *Executor) SetLogger(logger Logger) {
	e.logger = logger
}

// SetOutput redirects operator-facing messages. Defaults to stdout.
func (e *Executor) SetOutput(w io.Writer) {
	e.out = w
}

// RunPhase executes the named phase's steps in order. The first command
// exiting nonzero aborts the phase and the step's failure message is shown.
// A failing check command only warns.
func (e *Executor) RunPhase(ctx context.Context, name string) error {
	steps, ok := e.manifest.Phase(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrPhaseNotFound, name)
	}

	e.logger.Info("running phase", "phase", name, "steps", len(steps))

	for _, step := range steps {
		if err := e.runStep(ctx, name, step); err != nil {
			return err
		}
	}

	e.logger.Info("phase complete", "phase", name)
	return nil
}

func (e *Executor) runStep(ctx context.Context, phase string, step Step) error {
	if step.Description != "" {
		fmt.Fprintln(e.out, step.Description)
	}

	for _, command := range step.Commands {
		e.logger.Debug("running command", "phase", phase, "step", step.Name, "command", command)

		result, err := e.runner.Run(ctx, command)
		if err != nil {
			e.fail(step)
			return fmt.Errorf("%w: %s: %v", ErrStepFailed, step.Name, err)
		}
		if result.ExitCode != 0 {
			e.fail(step)
			if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
				e.logger.Error("command failed", "step", step.Name, "command", command,
					"exit_code", result.ExitCode, "stderr", stderr)
			} else {
				e.logger.Error("command failed", "step", step.Name, "command", command,
					"exit_code", result.ExitCode)
			}
			return fmt.Errorf("%w: %s: %q exited %d", ErrStepFailed, step.Name, command, result.ExitCode)
		}
	}

	if step.CheckCommand != "" {
		result, err := e.runner.Run(ctx, step.CheckCommand)
		if err != nil || result.ExitCode != 0 {
			e.logger.Warn("check command failed", "step", step.Name, "command", step.CheckCommand)
		}
	}

	if step.SuccessMessage != "" {
		fmt.Fprintln(e.out, step.SuccessMessage)
	}
	return nil
}

func (e *Executor) fail(step Step) {
	if step.FailureMessage != "" {
		fmt.Fprintln(e.out, step.FailureMessage)
	}
}
