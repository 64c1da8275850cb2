package orchestrate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the orchestration document: named phases plus informational
// sections shown by the info command.
type Manifest struct {
	Phases map[string][]Step `yaml:"phases"`

	// URLs lists service endpoints for the operator (name -> URL).
	URLs map[string]string `yaml:"urls"`

	// Requirements lists tools that must be installed.
	Requirements []string `yaml:"requirements"`

	// Instructions are free-form usage notes.
	Instructions []string `yaml:"instructions"`
}

// Step is one unit of a phase.
type Step struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Commands run in order; the first nonzero exit aborts the phase.
	Commands []string `yaml:"commands"`

	// CheckCommand optionally verifies the step afterwards. A nonzero exit
	// is a warning, not a failure.
	CheckCommand string `yaml:"check_command"`

	SuccessMessage string `yaml:"success_message"`
	FailureMessage string `yaml:"failure_message"`
}

// LoadManifest reads and validates the manifest at path. Unlike the tool
// configuration, a missing manifest is an error: orchestration cannot run
// without one.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}

	return &m, nil
}

// Validate checks the manifest for structural errors.
func (m *Manifest) Validate() error {
	var errs []string

	if len(m.Phases) == 0 {
		errs = append(errs, "at least one phase is required")
	}
	for name, steps := range m.Phases {
		if len(steps) == 0 {
			errs = append(errs, fmt.Sprintf("phase %q has no steps", name))
		}
		for i, step := range steps {
			if len(step.Commands) == 0 {
				errs = append(errs, fmt.Sprintf("phase %q step %d has no commands", name, i))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("manifest errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Phase returns the named phase's steps.
func (m *Manifest) Phase(name string) ([]Step, bool) {
	steps, ok := m.Phases[name]
	return steps, ok
}
