// Package testdata provides access to shared sample inputs and config for testing
package testdata

import (
	"path/filepath"
	"runtime"
	"testing"
)

var absoluteDirPath string

func init() {
	_, thisFile, _, _ := runtime.Caller(0)
	absoluteDirPath = filepath.Dir(thisFile)
}

// GetConfigPath returns the path of sample config file
func GetConfigPath() string {
	return filepath.Join(absoluteDirPath, "config_sample.yml")
}

// GetInputPattern returns the glob pattern of all sample input files
func GetInputPattern() string {
	return filepath.Join(absoluteDirPath, "development", "*-input.log")
}

// GetOutputPath returns the path of expected output from all sample inputs
func GetOutputPath() string {
	return filepath.Join(absoluteDirPath, "development", "all-output.json")
}

// ListInputFiles lists sample input files matching the pattern, e.g. "orders" for "orders-input.log"
func ListInputFiles(t *testing.T, pattern string) []string {
	fullPattern := filepath.Join(absoluteDirPath, "development", pattern+"-input.log")

	inFiles, globErr := filepath.Glob(fullPattern)
	if globErr != nil {
		t.Fatalf("failed to scan test files at path %s: %v", fullPattern, globErr)
	}
	if len(inFiles) == 0 {
		t.Fatalf("failed to find test files at path %s: no match", fullPattern)
	}
	return inFiles
}
