package buildcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Defaults(t *testing.T) {
	cmd, err := Build(Options{ModuleDir: "/src", Package: "cmd/workload"}, "/out/bootstrap")
	require.NoError(t, err)

	assert.Equal(t, "/src", cmd.Dir)
	assert.Equal(t, []string{
		"go", "build", "-trimpath", "-buildvcs=false", "-tags", "lambda.norpc",
		"-o", "/out/bootstrap", "./cmd/workload",
	}, cmd.Args)
	assert.Contains(t, cmd.Env, "GOOS=linux")
	assert.Contains(t, cmd.Env, "GOARCH=arm64")
	assert.Contains(t, cmd.Env, "CGO_ENABLED=0")
}

func TestBuild_CustomFlagsAndEnv(t *testing.T) {
	cmd, err := Build(Options{
		ModuleDir:  "/src",
		Package:    "./cmd/workload",
		Arch:       ArchAMD64,
		BuildFlags: []string{"-ldflags=-s -w", "-tags=custom"},
		ExtraEnv:   []string{"CGO_ENABLED=1", "GOFLAGS=-mod=mod"},
		GoProxy:    "https://proxy.example",
	}, "/out/bootstrap")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"go", "build", "-trimpath", "-buildvcs=false", "-ldflags=-s -w", "-tags=custom",
		"-o", "/out/bootstrap", "./cmd/workload",
	}, cmd.Args)
	assert.Contains(t, cmd.Env, "GOARCH=amd64")
	assert.Contains(t, cmd.Env, "CGO_ENABLED=1")
	assert.NotContains(t, cmd.Env, "CGO_ENABLED=0")
	assert.Contains(t, cmd.Env, "GOPROXY=https://proxy.example")
	assert.Contains(t, cmd.Env, "GOFLAGS=-mod=mod")
}

func TestBuild_RejectsUnknownArch(t *testing.T) {
	_, err := Build(Options{ModuleDir: "/src", Arch: "riscv64"}, "/out/bootstrap")
	require.ErrorContains(t, err, "unsupported lambda architecture")
}

func TestFilterEnv(t *testing.T) {
	got := FilterEnv([]string{"A=1", "B=2", "=skip", "A=3", "FLAG"})
	assert.Equal(t, []string{"A=3", "B=2", "FLAG="}, got)
}
