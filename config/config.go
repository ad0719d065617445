package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/pcdemo/autoscaling/internal/workload"
	"github.com/pcdemo/autoscaling/lib/constructs/scaling"
	"github.com/pcdemo/autoscaling/lib/constructs/workload_function"
)

// DO NOT modify this function, change stack name by 'cdk.json/context/stackName'.
func StackName(scope constructs.Construct) string {
	stackName := "PcAutoscalingDemo"

	ctxValue := scope.Node().TryGetContext(jsii.String("stackName"))
	if v, ok := ctxValue.(string); ok && v != "" {
		stackName = v
	}

	return stackName
}

// WithStackSuffix appends the optional 'stackSuffix' context value, so several
// copies of the demo can live in one account.
func WithStackSuffix(scope constructs.Construct, name string) string {
	if v, ok := scope.Node().TryGetContext(jsii.String("stackSuffix")).(string); ok && v != "" {
		return name + "-" + v
	}
	return name
}

// WorkloadProfile reads 'workloadProfile'; both subjects run the same profile
// so that only the scaling metric differs.
func WorkloadProfile(scope constructs.Construct) workload.Profile {
	raw, _ := scope.Node().TryGetContext(jsii.String("workloadProfile")).(string)
	p, ok := workload.ParseProfile(raw)
	if !ok {
		panic(fmt.Errorf("invalid workloadProfile=%q – allowed: %s | %s", raw, workload.ProfileStandard, workload.ProfileSlowStart))
	}
	return p
}

// Packaging resolves the build mode: WORKLOAD_PACKAGING, then the 'packaging'
// context, then docker.
func Packaging(scope constructs.Construct, env SynthEnvironmentVariables) workload_function.Packaging {
	raw := env.Packaging
	if raw == "" {
		raw, _ = scope.Node().TryGetContext(jsii.String("packaging")).(string)
	}
	if raw == "" {
		return workload_function.PackagingDocker
	}
	p, err := workload_function.ParsePackaging(raw)
	if err != nil {
		panic(fmt.Errorf("%w – allowed: docker | local", err))
	}
	return p
}

// ScalingSettings reads the capacity range, target and cooldowns, falling
// back to scaling.DefaultSettings for anything unset. Invalid settings panic.
func ScalingSettings(scope constructs.Construct) scaling.Settings {
	s := scaling.DefaultSettings()
	if v, ok := contextNumber(scope, "minCapacity"); ok {
		s.MinCapacity = int(v)
	}
	if v, ok := contextNumber(scope, "maxCapacity"); ok {
		s.MaxCapacity = int(v)
	}
	if v, ok := contextNumber(scope, "targetUtilization"); ok {
		s.TargetUtilization = v
	}
	if v, ok := contextNumber(scope, "scaleInCooldownSeconds"); ok {
		s.ScaleInCooldown = time.Duration(v * float64(time.Second))
	}
	if v, ok := contextNumber(scope, "scaleOutCooldownSeconds"); ok {
		s.ScaleOutCooldown = time.Duration(v * float64(time.Second))
	}
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// ProvisionedConcurrency is the alias's initial pool; it defaults to the
// minimum capacity so the first scaling action does not shrink it.
func ProvisionedConcurrency(scope constructs.Construct, settings scaling.Settings) int {
	if v, ok := contextNumber(scope, "provisionedConcurrency"); ok {
		return int(v)
	}
	return max(settings.MinCapacity, 1)
}

// DashboardName reads 'dashboardName'; empty lets the dashboard derive one.
func DashboardName(scope constructs.Construct) string {
	v, _ := scope.Node().TryGetContext(jsii.String("dashboardName")).(string)
	return v
}

// contextNumber accepts JSON numbers from cdk.json and strings from `-c key=value`.
func contextNumber(scope constructs.Construct, key string) (float64, bool) {
	switch v := scope.Node().TryGetContext(jsii.String(key)).(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("context %q must be a number, got %q", key, v))
		}
		return f, true
	default:
		panic(fmt.Sprintf("context %q must be a number, got %T", key, v))
	}
}
