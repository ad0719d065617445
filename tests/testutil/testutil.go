package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3assets"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

//---------------------------------------------------------------------
// 1. Generic helpers
//---------------------------------------------------------------------

// TmpFile creates a temp file with given content and returns its path.
func TmpFile(t *testing.T, content []byte) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*")
	if err != nil {
		t.Fatalf("tmp-file: %v", err)
	}
	if _, err := f.Write(content); err != nil {
		t.Fatalf("tmp-file-write: %v", err)
	}
	f.Close()
	return f.Name()
}

// TmpGoModule lays out a throwaway module with an empty main package at pkg
// and returns the module directory.
func TmpGoModule(t *testing.T, pkg string) string {
	t.Helper()
	dir := t.TempDir()
	files := [][2]string{
		{"go.mod", "module example.com/workload\n\ngo 1.24\n"},
		{filepath.Join(pkg, "main.go"), "package main\n\nfunc main() {}\n"},
	}
	for _, f := range files {
		rel, content := f[0], f[1]
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("tmp-module-dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("tmp-module-write: %v", err)
		}
	}
	return dir
}

//---------------------------------------------------------------------
// 2. CDK fixtures
//---------------------------------------------------------------------

// NewSynthApp returns an app whose stacks skip asset bundling, so synth
// assertions never invoke the Go toolchain or Docker.
func NewSynthApp(context map[string]interface{}) awscdk.App {
	ctx := map[string]interface{}{"aws:cdk:bundling-stacks": []string{}}
	for k, v := range context {
		ctx[k] = v
	}
	return awscdk.NewApp(&awscdk.AppProps{Context: &ctx})
}

// DummyFileAsset returns an S3 asset backed by an empty file.
func DummyFileAsset(scope constructs.Construct, id string, t *testing.T) awss3assets.Asset {
	t.Helper()
	empty := TmpFile(t, nil)
	return awss3assets.NewAsset(scope, jsii.String(id),
		&awss3assets.AssetProps{Path: jsii.String(empty)})
}
