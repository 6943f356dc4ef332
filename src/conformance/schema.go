// Package conformance runs YAML suites of programs against the interpreter.
package conformance

// TestSuite represents a complete YAML test file
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase is a single program and what running it should produce
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"` // bool or string
	Program     string      `yaml:"program"`
	Expect      Expectation `yaml:"expect"`
}

// Expectation defines what result is expected from a test.  A test expecting
// an error does not check output or variables.
type Expectation struct {
	Output *string          `yaml:"output,omitempty"` // everything printed
	Vars   map[string]int64 `yaml:"vars,omitempty"`   // final values of the listed variables
	Error  string           `yaml:"error,omitempty"`  // syntax, token, division_by_zero, undeclared
	At     *int             `yaml:"at,omitempty"`     // token index of a syntax error
}

// IsSkipped returns true if this test should be skipped
func (tc *TestCase) IsSkipped() (bool, string) {
	if tc.Skip == nil {
		return false, ""
	}

	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
		return false, ""
	case string:
		return true, v
	default:
		return false, ""
	}
}
