package harness

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a sequence of builds over one site.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Config is the content of kiln.yaml.
	Config string `yaml:"config"`

	// Files are the initial sources, keyed by slash-separated path.
	Files map[string]string `yaml:"files,omitempty"`

	// Runs are executed in order against the same directories.
	Runs []RunStep `yaml:"runs"`

	// Assertions are checked after the last run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// RunStep edits the site, then builds it once.
type RunStep struct {
	Name string `yaml:"name"`

	// Write creates or replaces sources before the build.
	Write map[string]string `yaml:"write,omitempty"`

	// Remove deletes sources before the build.
	Remove []string `yaml:"remove,omitempty"`

	// Config replaces kiln.yaml before the build.
	Config string `yaml:"config,omitempty"`

	// Clean removes the destination and store first, like `kiln rebuild`.
	Clean bool `yaml:"clean,omitempty"`

	// Expect is checked against the build's report. Nil checks nothing
	// beyond the build succeeding.
	Expect *RunExpect `yaml:"expect,omitempty"`
}

// RunExpect states the outcome of one build. Nil fields are not checked.
type RunExpect struct {
	FirstRun *bool `yaml:"first_run,omitempty"`

	// Error is the expected error code. Empty expects success.
	Error string `yaml:"error,omitempty"`

	Order    *[]string `yaml:"order,omitempty"`
	Modified *[]string `yaml:"modified,omitempty"`
	Stale    *[]string `yaml:"stale,omitempty"`
	Written  *[]string `yaml:"written,omitempty"`
}

// Assertion validates the state left by the scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Path is a destination-relative file (output, output_absent).
	Path string `yaml:"path,omitempty"`

	// Content is the expected file content (output).
	Content string `yaml:"content,omitempty"`

	// Run names the run to inspect (order).
	Run string `yaml:"run,omitempty"`

	// Items is the expected relative order (order).
	Items []string `yaml:"items,omitempty"`

	// Statuses are the expected ledger statuses, newest first (ledger).
	Statuses []string `yaml:"statuses,omitempty"`
}

// Assertion type constants.
const (
	AssertOutput       = "output"
	AssertOutputAbsent = "output_absent"
	AssertOrder        = "order"
	AssertLedger       = "ledger"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if len(s.Runs) == 0 {
		return fmt.Errorf("runs list is required and must be non-empty")
	}

	for p := range s.Files {
		if err := validateSourcePath(p); err != nil {
			return fmt.Errorf("files: %w", err)
		}
	}

	names := make(map[string]bool, len(s.Runs))
	for i, run := range s.Runs {
		if run.Name == "" {
			return fmt.Errorf("runs[%d]: name is required", i)
		}
		if names[run.Name] {
			return fmt.Errorf("runs[%d]: duplicate run name %q", i, run.Name)
		}
		names[run.Name] = true

		for p := range run.Write {
			if err := validateSourcePath(p); err != nil {
				return fmt.Errorf("runs[%d].write: %w", i, err)
			}
		}
		for _, p := range run.Remove {
			if err := validateSourcePath(p); err != nil {
				return fmt.Errorf("runs[%d].remove: %w", i, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, names); err != nil {
			return err
		}
	}
	return nil
}

func validateSourcePath(p string) error {
	if p == "" || path.IsAbs(p) || path.Clean(p) != p || p == ".." || strings.HasPrefix(p, "../") {
		return fmt.Errorf("invalid path %q", p)
	}
	if p == "kiln.yaml" {
		return fmt.Errorf("%q is reserved for the configuration", p)
	}
	return nil
}

func validateAssertion(index int, a *Assertion, runs map[string]bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertOutput, AssertOutputAbsent:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for %s", index, a.Type)
		}
	case AssertOrder:
		if !runs[a.Run] {
			return fmt.Errorf("assertions[%d]: unknown run %q", index, a.Run)
		}
		if len(a.Items) < 2 {
			return fmt.Errorf("assertions[%d]: order needs at least two items", index)
		}
	case AssertLedger:
		if len(a.Statuses) == 0 {
			return fmt.Errorf("assertions[%d]: statuses list is required for ledger", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
