package buildcmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Supported Lambda architectures.
const (
	ArchARM64 = "arm64"
	ArchAMD64 = "amd64"
)

// DefaultOutName is the executable name the provided.* runtimes look for.
const DefaultOutName = "bootstrap"

// Options configure how a Lambda binary is built.
type Options struct {
	// ModuleDir is the directory holding go.mod.
	ModuleDir string
	// Package is the main package to build, relative to ModuleDir (e.g. "./cmd/workload").
	Package string
	// OutName is the executable name inside the asset. Defaults to "bootstrap".
	OutName string
	// Arch is the Lambda architecture, "arm64" or "amd64".
	Arch string
	// BuildFlags are appended to `go build`.
	BuildFlags []string
	// ExtraEnv defines additional environment variables for the build.
	ExtraEnv []string
	// GoProxy sets GOPROXY for the build.
	GoProxy string
	// Logger is optional; nil means no logging.
	Logger *zap.Logger
}

// Build returns the `go build` command that writes the binary to outputPath.
func Build(opt Options, outputPath string) (*exec.Cmd, error) {
	arch := opt.Arch
	if arch == "" {
		arch = ArchARM64
	}
	if arch != ArchARM64 && arch != ArchAMD64 {
		return nil, fmt.Errorf("unsupported lambda architecture %q, expected %s or %s", arch, ArchARM64, ArchAMD64)
	}

	pkg := opt.Package
	if pkg == "" {
		pkg = "."
	}
	if !strings.HasPrefix(pkg, ".") {
		pkg = "./" + filepath.ToSlash(pkg)
	}

	args := []string{"build", "-trimpath"}
	if !sliceContainsPrefix(opt.BuildFlags, "-buildvcs=") {
		args = append(args, "-buildvcs=false")
	}
	if !sliceContainsPrefix(opt.BuildFlags, "-tags") {
		args = append(args, "-tags", "lambda.norpc")
	}
	args = append(args, opt.BuildFlags...)
	args = append(args, "-o", outputPath, pkg)

	env := os.Environ()
	env = append(env, "GOOS=linux", "GOARCH="+arch)
	if !sliceContains(opt.ExtraEnv, "CGO_ENABLED=1") {
		env = append(env, "CGO_ENABLED=0")
	}
	if opt.GoProxy != "" {
		env = append(env, "GOPROXY="+opt.GoProxy)
	}
	env = append(env, opt.ExtraEnv...)

	cmd := exec.Command("go", args...)
	cmd.Env = FilterEnv(env)
	cmd.Dir = opt.ModuleDir
	return cmd, nil
}

// FilterEnv removes duplicate variables, keeping the last value and the
// position of the first occurrence.
func FilterEnv(env []string) []string {
	values := make(map[string]string, len(env))
	order := make([]string, 0, len(env))
	for _, pair := range env {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		values[key] = value
	}
	out := make([]string, 0, len(order))
	for _, key := range order {
		out = append(out, key+"="+values[key])
	}
	return out
}

func sliceContains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func sliceContainsPrefix(slice []string, prefix string) bool {
	for _, s := range slice {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
