package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines an analysis test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the path to the model file. Relative paths are resolved
	// against the scenario file's directory by LoadScenario.
	Model string `yaml:"model"`

	// Title is the report title. Defaults to the model name.
	Title string `yaml:"title,omitempty"`

	// RunID is an optional fixed run id.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Assumptions are the uncertainty assumptions to analyze.
	Assumptions []AssumptionSpec `yaml:"assumptions"`

	// Expect holds the expected analysis outcome.
	Expect Expectations `yaml:"expect"`
}

// AssumptionSpec is an assumption as written in a scenario.
type AssumptionSpec struct {
	ID          string   `yaml:"id"`
	Type        string   `yaml:"type,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Entities    []string `yaml:"entities"`
}

// Expectations lists the checks of a scenario. Nil fields are not checked.
type Expectations struct {
	Affected    []string         `yaml:"affected,omitempty"`
	NotAffected []string         `yaml:"not_affected,omitempty"`
	Impacted    []int            `yaml:"impacted,omitempty"`
	Distinct    []int            `yaml:"distinct,omitempty"`
	Violations  map[int][]string `yaml:"violations,omitempty"`
	Skipped     []string         `yaml:"skipped,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file and resolves its model
// path relative to the file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Model == "" {
		return fmt.Errorf("model is required")
	}

	if _, err := os.Stat(s.Model); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.Model)
	}

	seen := make(map[string]bool, len(s.Assumptions))
	for i, a := range s.Assumptions {
		if a.ID == "" {
			return fmt.Errorf("assumptions[%d]: id is required", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("assumptions[%d]: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = true
		if len(a.Entities) == 0 {
			return fmt.Errorf("assumptions[%d]: entities list is required and must be non-empty", i)
		}
	}

	for i, idx := range s.Expect.Impacted {
		if idx < 0 {
			return fmt.Errorf("expect.impacted[%d]: index must be non-negative", i)
		}
	}
	for i, idx := range s.Expect.Distinct {
		if idx < 0 {
			return fmt.Errorf("expect.distinct[%d]: index must be non-negative", i)
		}
	}

	return nil
}
