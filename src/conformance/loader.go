package conformance

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestPath is the directory holding the bundled suites (relative to this
// package)
const TestPath = "testdata"

// LoadedTest represents a test with its source file path
type LoadedTest struct {
	File  string
	Suite *TestSuite
	Test  TestCase
}

// LoadAllTests walks a directory and loads every test case of every .yaml file
// in it
func LoadAllTests(testDir string) ([]LoadedTest, error) {
	var loaded []LoadedTest

	err := filepath.Walk(testDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Only process .yaml files
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		tests, err := loadTestFile(path)
		if err != nil {
			return err
		}

		// Get relative path for cleaner test names
		relPath, _ := filepath.Rel(testDir, path)

		for _, test := range tests {
			test.File = relPath
			loaded = append(loaded, test)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return loaded, nil
}

// loadTestFile parses a single YAML file and returns all test cases
func loadTestFile(path string) ([]LoadedTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	suite, err := LoadSuite(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var tests []LoadedTest
	for _, test := range suite.Tests {
		tests = append(tests, LoadedTest{
			File:  path,
			Suite: suite,
			Test:  test,
		})
	}

	return tests, nil
}

// LoadSuite decodes one suite.  Unknown fields are rejected so a misspelled
// expectation never passes silently.
func LoadSuite(r io.Reader) (*TestSuite, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var suite TestSuite
	if err := dec.Decode(&suite); err != nil {
		return nil, err
	}

	if suite.Name == "" {
		return nil, fmt.Errorf("suite has no name")
	}

	for i, test := range suite.Tests {
		if test.Name == "" {
			return nil, fmt.Errorf("test %d of suite `%s` has no name", i, suite.Name)
		}
	}

	return &suite, nil
}
