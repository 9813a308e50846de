package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one resolution to run and check.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Kconfig is the schema file or directory. LoadScenario resolves it
	// relative to the scenario file.
	Kconfig string `yaml:"kconfig"`

	Board     string `yaml:"board"`
	BuildType string `yaml:"build_type"`

	// Overrides replaces the board's defconfig when set. Values use
	// defconfig spelling: "y", "n", integers, plain strings.
	Overrides map[string]string `yaml:"overrides,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one property of a Result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Symbol is the symbol name (value, absent).
	Symbol string `yaml:"symbol,omitempty"`

	// Value is the expected value (value): a YAML bool, int or string.
	Value any `yaml:"value,omitempty"`

	// Symbols is the expected order (order).
	Symbols []string `yaml:"symbols,omitempty"`

	// Values is the exact flag list (flags).
	Values []string `yaml:"values,omitempty"`

	// Constants are name/value pairs the constants must include (constants).
	Constants map[string]int64 `yaml:"constants,omitempty"`

	// Count is the expected number of warnings (warnings).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertValue     = "value"
	AssertAbsent    = "absent"
	AssertOrder     = "order"
	AssertFlags     = "flags"
	AssertConstants = "constants"
	AssertWarnings  = "warnings"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Kconfig != "" && !filepath.IsAbs(scenario.Kconfig) {
		scenario.Kconfig = filepath.Join(filepath.Dir(path), scenario.Kconfig)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	switch {
	case s.Name == "":
		return fmt.Errorf("name is required")
	case s.Description == "":
		return fmt.Errorf("description is required")
	case s.Kconfig == "":
		return fmt.Errorf("kconfig is required")
	case s.Board == "" || s.BuildType == "":
		return fmt.Errorf("board and build_type are required")
	case len(s.Assertions) == 0:
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if _, err := os.Stat(s.Kconfig); err != nil {
		return fmt.Errorf("kconfig: %w", err)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertValue:
		if a.Symbol == "" || a.Value == nil {
			return fmt.Errorf("assertions[%d]: symbol and value are required for value", index)
		}
	case AssertAbsent:
		if a.Symbol == "" {
			return fmt.Errorf("assertions[%d]: symbol is required for absent", index)
		}
	case AssertOrder:
		if len(a.Symbols) < 2 {
			return fmt.Errorf("assertions[%d]: order needs at least two symbols", index)
		}
	case AssertFlags:
		// An empty list asserts that no flags are emitted.
	case AssertConstants:
		if len(a.Constants) == 0 {
			return fmt.Errorf("assertions[%d]: constants map is required for constants", index)
		}
	case AssertWarnings:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for warnings", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
