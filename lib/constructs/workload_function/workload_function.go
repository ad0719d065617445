// Package workload_function deploys the simulated workload handler behind a
// published alias with provisioned concurrency.
package workload_function

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"

	"github.com/pcdemo/autoscaling/internal/workload"
	"github.com/pcdemo/autoscaling/lib/cdklogger"
	"github.com/pcdemo/autoscaling/lib/goasset"
	"github.com/pcdemo/autoscaling/lib/utils"
)

const (
	// HandlerPackage is the main package of the Lambda binary, relative to the module root.
	HandlerPackage = "cmd/workload"

	DefaultAliasName              = "live"
	DefaultMemorySize             = 256
	DefaultTimeout                = 10 * time.Second
	DefaultProvisionedConcurrency = 1
)

type WorkloadFunctionProps struct {
	Profile   workload.Profile
	Packaging Packaging
	// Workload overrides the profile's delays when set.
	Workload *workload.Config
	// ModuleDir holds go.mod; resolved from the working directory when empty.
	ModuleDir              string
	MemorySize             int
	Timeout                time.Duration
	ProvisionedConcurrency int
	AliasName              string
	// GoProxy is passed to local builds.
	GoProxy string
}

type WorkloadFunction struct {
	constructs.Construct
	Function awslambda.IFunction
	Version  awslambda.IVersion
	Alias    awslambda.Alias
	LogGroup awslogs.ILogGroup
	Role     awsiam.IRole
	Config   workload.Config
}

func NewWorkloadFunction(scope constructs.Construct, id string, props *WorkloadFunctionProps) *WorkloadFunction {
	if props == nil {
		props = &WorkloadFunctionProps{}
	}
	profile, ok := workload.ParseProfile(string(props.Profile))
	if !ok {
		panic(fmt.Sprintf("unknown workload profile %q for %s", props.Profile, id))
	}
	packaging, err := ParsePackaging(string(lo.Ternary(props.Packaging == "", PackagingDocker, props.Packaging)))
	if err != nil {
		panic(fmt.Errorf("workload function %s: %w", id, err))
	}
	moduleDir := props.ModuleDir
	if moduleDir == "" {
		root, err := utils.ModuleRoot()
		if err != nil {
			panic(fmt.Errorf("workload function %s: %w", id, err))
		}
		moduleDir = root
	}

	cfg := workload.Defaults(profile)
	if props.Workload != nil {
		cfg = *props.Workload
		cfg.Profile = profile
	}

	construct := constructs.NewConstruct(scope, jsii.String(id))

	logGroup := awslogs.NewLogGroup(construct, jsii.String("LogGroup"), &awslogs.LogGroupProps{
		Retention:     awslogs.RetentionDays_ONE_WEEK,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	var role awsiam.IRole
	if profile == workload.ProfileSlowStart {
		role = awsiam.NewRole(construct, jsii.String("ExecutionRole"), &awsiam.RoleProps{
			AssumedBy: awsiam.NewServicePrincipal(jsii.String("lambda.amazonaws.com"), nil),
			ManagedPolicies: &[]awsiam.IManagedPolicy{
				awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("service-role/AWSLambdaBasicExecutionRole")),
			},
			Description: jsii.String(fmt.Sprintf("Execution role of the %s workload", profile)),
		})
	}

	environment := map[string]*string{}
	for k, v := range cfg.Environment() {
		environment[k] = jsii.String(v)
	}

	memorySize := lo.Ternary(props.MemorySize > 0, props.MemorySize, DefaultMemorySize)
	timeout := lo.Ternary(props.Timeout > 0, props.Timeout, DefaultTimeout)

	var fn awslambda.Function
	switch packaging {
	case PackagingDocker:
		goFn := awscdklambdagoalpha.NewGoFunction(construct, jsii.String("Function"), &awscdklambdagoalpha.GoFunctionProps{
			Entry:        jsii.String(filepath.Join(moduleDir, HandlerPackage)),
			ModuleDir:    jsii.String(moduleDir),
			Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
			Architecture: awslambda.Architecture_ARM_64(),
			MemorySize:   jsii.Number(float64(memorySize)),
			Timeout:      awscdk.Duration_Millis(jsii.Number(float64(timeout.Milliseconds()))),
			Environment:  &environment,
			Role:         role,
			LogGroup:     logGroup,
			Bundling: &awscdklambdagoalpha.BundlingOptions{
				BundlingFileAccess: awscdk.BundlingFileAccess_VOLUME_COPY,
				GoBuildFlags: &[]*string{
					jsii.String("-ldflags \"-s -w\""),
				},
			},
		})
		fn = goFn
	case PackagingLocal:
		asset := goasset.Bundle(construct, "Bootstrap", goasset.Options{
			ModuleDir:  moduleDir,
			Package:    HandlerPackage,
			BuildFlags: []string{"-ldflags", "-s -w"},
			GoProxy:    props.GoProxy,
		})
		fn = awslambda.NewFunction(construct, jsii.String("Function"), &awslambda.FunctionProps{
			Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
			Architecture: awslambda.Architecture_ARM_64(),
			Handler:      jsii.String("bootstrap"),
			Code:         awslambda.Code_FromBucket(asset.Bucket(), asset.S3ObjectKey(), nil),
			MemorySize:   jsii.Number(float64(memorySize)),
			Timeout:      awscdk.Duration_Millis(jsii.Number(float64(timeout.Milliseconds()))),
			Environment:  &environment,
			Role:         role,
			LogGroup:     logGroup,
		})
	}

	provisioned := lo.Ternary(props.ProvisionedConcurrency > 0, props.ProvisionedConcurrency, DefaultProvisionedConcurrency)
	aliasName := lo.Ternary(props.AliasName != "", props.AliasName, DefaultAliasName)
	version := fn.CurrentVersion()
	alias := awslambda.NewAlias(construct, jsii.String("Alias"), &awslambda.AliasProps{
		AliasName:                       jsii.String(aliasName),
		Version:                         version,
		ProvisionedConcurrentExecutions: jsii.Number(float64(provisioned)),
	})

	cdklogger.LogInfo(construct, id, "%s workload (%s packaging): work %s, cold start %s, alias %s with %d provisioned",
		profile, packaging, cfg.WorkTime, cfg.ColdStartTime, aliasName, provisioned)

	return &WorkloadFunction{
		Construct: construct,
		Function:  fn,
		Version:   version,
		Alias:     alias,
		LogGroup:  logGroup,
		Role:      fn.Role(),
		Config:    cfg,
	}
}
