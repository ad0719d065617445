package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ModuleRoot walks up from the working directory to the first directory
// holding a go.mod. CDK runs the app from the repo root, while `go test`
// runs from the package directory, so constructs resolve sources through it.
func ModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod found above working directory")
		}
		dir = parent
	}
}
