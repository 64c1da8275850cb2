// Package orchestrate drives the container stack around a Ditto instance
// from a YAML manifest.
//
// The manifest declares named phases (setup, shutdown, ...), each an ordered
// list of steps. A step carries shell commands, an optional post-step check
// command, and operator-facing success/failure messages. Phases are read
// once at process start and executed top to bottom.
//
// Failure semantics: a command exiting nonzero aborts the phase immediately;
// a failing check command is only a warning. The shell commands themselves
// (docker compose, kubectl, ...) are opaque to this package. It runs them
// and reports exit code, stdout, and stderr.
package orchestrate
