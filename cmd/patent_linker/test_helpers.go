package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// envWithout returns the current environment minus the named variable.
func envWithout(name string) []string {
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, name+"=") {
			env = append(env, e)
		}
	}
	return env
}

// getBinaryPath returns the path to the patent_linker binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "patent_linker"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'make build'", binaryPath)
	}

	return binaryPath
}
