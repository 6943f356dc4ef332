package conformance

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ComedicChimera/minimini/src/build"
	"github.com/ComedicChimera/minimini/src/syntax"
	"github.com/ComedicChimera/minimini/src/util"
	"github.com/ComedicChimera/minimini/src/vm"
)

// TestResult represents the outcome of running a single test
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error
}

// Runner executes conformance tests
type Runner struct {
	compiler *build.Compiler
}

// NewRunner creates a runner loading programs with the given compiler
func NewRunner(compiler *build.Compiler) *Runner {
	return &Runner{compiler: compiler}
}

// Run loads and executes the program of a test and checks the expectation
func (r *Runner) Run(test LoadedTest) TestResult {
	result := TestResult{Test: test}

	if skip, reason := test.Test.IsSkipped(); skip {
		result.Skipped = true
		result.SkipReason = reason
		return result
	}

	out := &bytes.Buffer{}
	vars, err := r.execute(test, out)

	result.Error = r.checkExpectation(test.Test.Expect, out.String(), vars, err)
	result.Passed = result.Error == nil
	return result
}

func (r *Runner) execute(test LoadedTest, out *bytes.Buffer) (map[string]int64, error) {
	prog, err := r.compiler.Load(test.Test.Name, test.Test.Program)
	if err != nil {
		return nil, err
	}

	return prog.Execute(out)
}

// RunAll runs every test in order
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, 0, len(tests))

	for _, test := range tests {
		results = append(results, r.Run(test))
	}

	return results
}

// SummaryStats counts test outcomes
type SummaryStats struct {
	Total, Passed, Failed, Skipped int
}

// ComputeStats computes summary statistics from results
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}

	for _, result := range results {
		switch {
		case result.Skipped:
			stats.Skipped++
		case result.Passed:
			stats.Passed++
		default:
			stats.Failed++
		}
	}

	return stats
}

// FormatStats formats summary statistics as a string
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("Total: %d, Passed: %d, Failed: %d, Skipped: %d",
		stats.Total, stats.Passed, stats.Failed, stats.Skipped)
}

// errorMatchers maps the error names used in suites to a check on the error
var errorMatchers = map[string]func(error) bool{
	"syntax": func(err error) bool {
		var se *syntax.SyntaxError
		return errors.As(err, &se)
	},
	"token": func(err error) bool {
		var se *util.SourceError
		return errors.As(err, &se) && se.Kind == "Token"
	},
	"division_by_zero": func(err error) bool {
		return errors.Is(err, vm.ErrDivisionByZero)
	},
	"undeclared": func(err error) bool {
		return errors.Is(err, vm.ErrUndeclared)
	},
}

func (r *Runner) checkExpectation(expect Expectation, output string, vars map[string]int64, err error) error {
	if expect.Error != "" {
		match, ok := errorMatchers[expect.Error]
		if !ok {
			return fmt.Errorf("unknown error name `%s`", expect.Error)
		}

		if err == nil {
			return fmt.Errorf("expected a %s error but the program ran", expect.Error)
		}

		if !match(err) {
			return fmt.Errorf("expected a %s error but got: %v", expect.Error, err)
		}

		if expect.At != nil {
			var se *syntax.SyntaxError
			if !errors.As(err, &se) || se.Position != *expect.At {
				return fmt.Errorf("expected the error at token %d but got: %v", *expect.At, err)
			}
		}

		return nil
	}

	if err != nil {
		return err
	}

	if expect.Output != nil && output != *expect.Output {
		return fmt.Errorf("expected output %q but got %q", *expect.Output, output)
	}

	var mismatches []string
	for name, want := range expect.Vars {
		got, ok := vars[name]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("`%s` is not declared", name))
		} else if got != want {
			mismatches = append(mismatches, fmt.Sprintf("`%s` is %d, expected %d", name, got, want))
		}
	}

	if len(mismatches) > 0 {
		sort.Strings(mismatches)
		return errors.New(strings.Join(mismatches, "; "))
	}

	return nil
}
