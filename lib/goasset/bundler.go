// Package goasset builds Go Lambda binaries on the synth host and packages
// them as S3 assets, falling back to a golang container when the local
// toolchain is unavailable.
package goasset

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3assets"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"

	"github.com/pcdemo/autoscaling/lib/cdklogger"
	"github.com/pcdemo/autoscaling/lib/goasset/internal/buildcmd"
)

// Options is the bundling configuration.
type Options = buildcmd.Options

// DockerImage is used when the binary cannot be built locally.
const DockerImage = "public.ecr.aws/docker/library/golang:1.24"

var (
	ErrModuleDirMissing = errors.New("ModuleDir is required")
	ErrNoGoMod          = errors.New("ModuleDir does not contain go.mod")
	ErrPackageNotExist  = errors.New("Package does not exist")
)

func validate(o Options) error {
	if o.ModuleDir == "" {
		return ErrModuleDirMissing
	}
	if _, err := os.Stat(filepath.Join(o.ModuleDir, "go.mod")); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: '%s'", ErrNoGoMod, o.ModuleDir)
		}
		return fmt.Errorf("failed to stat go.mod in '%s': %w", o.ModuleDir, err)
	}
	info, err := os.Stat(filepath.Join(o.ModuleDir, o.Package))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: '%s' in '%s'", ErrPackageNotExist, o.Package, o.ModuleDir)
	}
	return nil
}

// Bundle builds opt.Package into a Lambda-ready asset directory holding a
// single executable named opt.OutName. It panics on invalid options.
func Bundle(scope constructs.Construct, id string, opt Options) awss3assets.Asset {
	logger := opt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("goasset").With(zap.String("assetID", id))

	if err := validate(opt); err != nil {
		logger.Error("invalid bundling options", zap.Error(err))
		panic(err)
	}

	if opt.OutName == "" {
		opt.OutName = buildcmd.DefaultOutName
	}
	if opt.Arch == "" {
		opt.Arch = buildcmd.ArchARM64
	}
	if opt.GoProxy == "" {
		opt.GoProxy = os.Getenv("GOPROXY")
	}

	hash, err := assetHash(opt)
	if err != nil {
		logger.Error("failed to hash sources", zap.Error(err))
		panic(fmt.Errorf("hashing sources for asset %s: %w", id, err))
	}

	bundler := &GoBundler{opt: opt, l: logger, scope: scope, assetID: id}

	asset := awss3assets.NewAsset(scope, jsii.String(id), &awss3assets.AssetProps{
		Path: jsii.String(opt.ModuleDir),
		Bundling: &awscdk.BundlingOptions{
			Image: awscdk.DockerImage_FromRegistry(jsii.String(DockerImage)),
			Local: bundler,
			Environment: &map[string]*string{
				"GOOS":        jsii.String("linux"),
				"GOARCH":      jsii.String(opt.Arch),
				"CGO_ENABLED": jsii.String("0"),
				"GOPROXY":     jsii.String(firstNonEmpty(opt.GoProxy, "https://proxy.golang.org,direct")),
			},
			Command: jsii.Strings("/bin/sh", "-c", dockerBuildScript(opt)),
		},
		AssetHashType: awscdk.AssetHashType_CUSTOM,
		AssetHash:     jsii.String(hash),
	})

	cdklogger.LogInfo(scope, id, "Go Lambda asset declared for %s (linux/%s)", opt.Package, opt.Arch)
	return asset
}

// GoBundler builds the binary with the host toolchain.
type GoBundler struct {
	opt     Options
	l       *zap.Logger
	scope   constructs.Construct
	assetID string
}

var _ awscdk.ILocalBundling = &GoBundler{}

// TryBundle returns false to hand over to Docker bundling.
func (b *GoBundler) TryBundle(outputDir *string, _ *awscdk.BundlingOptions) *bool {
	if _, err := exec.LookPath("go"); err != nil {
		b.l.Info("go toolchain not found, delegating to docker bundling")
		cdklogger.LogInfo(b.scope, b.assetID, "Go toolchain not found on host, using %s", DockerImage)
		return jsii.Bool(false)
	}

	outputPath := filepath.Join(*outputDir, b.opt.OutName)
	cmd, err := buildcmd.Build(b.opt, outputPath)
	if err != nil {
		b.l.Error("failed to construct go build command", zap.Error(err))
		cdklogger.LogError(b.scope, b.assetID, "Failed to construct Go build command: %s", err.Error())
		return jsii.Bool(false)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.l.Debug("running go build",
		zap.Strings("args", cmd.Args),
		zap.String("cwd", cmd.Dir),
		zap.Strings("env", filterEnvForLogging(cmd.Env)),
	)

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)
	if err != nil {
		b.l.Error("go build failed",
			zap.Error(err),
			zap.String("stdout", stdout.String()),
			zap.String("stderr", stderr.String()),
		)
		cdklogger.LogWarning(b.scope, b.assetID, "Local Go build failed (%s), falling back to docker. Stderr: %s", err.Error(), stderr.String())
		return jsii.Bool(false)
	}

	if _, statErr := os.Stat(outputPath); statErr != nil {
		b.l.Error("go build succeeded but output is missing", zap.String("expectedPath", outputPath))
		cdklogger.LogError(b.scope, b.assetID, "Go build succeeded but output file missing: %s", outputPath)
		return jsii.Bool(false)
	}

	b.l.Info("go binary built locally", zap.String("outputPath", outputPath), zap.Duration("duration", duration))
	cdklogger.LogInfo(b.scope, b.assetID, "Built %s for linux/%s in %s", b.opt.Package, b.opt.Arch, duration.Round(time.Millisecond))
	return jsii.Bool(true)
}

// dockerBuildScript is the container-side equivalent of buildcmd.Build.
func dockerBuildScript(opt Options) string {
	pkg := opt.Package
	if !strings.HasPrefix(pkg, ".") {
		pkg = "./" + pkg
	}
	flags := append([]string{"-trimpath", "-buildvcs=false", "-tags", "lambda.norpc"}, opt.BuildFlags...)
	quoted := make([]string, 0, len(flags))
	for _, f := range flags {
		quoted = append(quoted, "'"+strings.ReplaceAll(f, "'", `'\''`)+"'")
	}
	return fmt.Sprintf("cd /asset-input && go build %s -o /asset-output/%s %s",
		strings.Join(quoted, " "), opt.OutName, pkg)
}

// assetHash covers everything that changes the binary: toolchain, target,
// flags and the module's Go sources.
func assetHash(opt Options) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s|linux/%s|%s|", getGoVersion(), opt.Arch, opt.Package)

	flags := append([]string{}, opt.BuildFlags...)
	sort.Strings(flags)
	extraEnv := append([]string{}, opt.ExtraEnv...)
	sort.Strings(extraEnv)
	fmt.Fprintf(h, "%s|%s|", strings.Join(flags, ","), strings.Join(extraEnv, ","))

	err := filepath.WalkDir(opt.ModuleDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != opt.ModuleDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "cdk.out" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") && name != "go.mod" && name != "go.sum" {
			return nil
		}
		rel, err := filepath.Rel(opt.ModuleDir, path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		fmt.Fprintf(h, "%s\x00", filepath.ToSlash(rel))
		_, err = io.Copy(h, f)
		return err
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// filterEnvForLogging redacts AWS credentials.
func filterEnvForLogging(env []string) []string {
	sensitive := map[string]bool{"AWS_ACCESS_KEY_ID": true, "AWS_SECRET_ACCESS_KEY": true, "AWS_SESSION_TOKEN": true}
	filtered := make([]string, 0, len(env))
	for _, e := range env {
		key, _, _ := strings.Cut(e, "=")
		if sensitive[key] {
			filtered = append(filtered, key+"=<redacted>")
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

var goVersionMemo string

// getGoVersion caches `go version`, falling back to the runtime version.
func getGoVersion() string {
	if goVersionMemo != "" {
		return goVersionMemo
	}
	output, err := exec.Command("go", "version").Output()
	if err != nil {
		zap.L().Warn("failed to get go version, using runtime version", zap.Error(err))
		goVersionMemo = runtime.Version()
		return goVersionMemo
	}
	goVersionMemo = strings.TrimSpace(string(output))
	return goVersionMemo
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
