// Package scaling attaches Application Auto Scaling to the provisioned
// concurrency of a Lambda alias.
package scaling

import (
	"fmt"
	"time"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapplicationautoscaling"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/pcdemo/autoscaling/lib/cdklogger"
)

const (
	utilizationMetricName     = "ProvisionedConcurrencyUtilization"
	provisionedConcurrencyDim = "lambda:function:ProvisionedConcurrency"
)

// ProvisionedConcurrencyScalingProps configures the scaling of one alias.
type ProvisionedConcurrencyScalingProps struct {
	Alias    awslambda.Alias
	Kind     MetricKind
	Settings Settings
}

// ProvisionedConcurrencyScaling is the scalable target and its policy.
type ProvisionedConcurrencyScaling struct {
	constructs.Construct
	Target   awsapplicationautoscaling.ScalableTarget
	Policy   awsapplicationautoscaling.TargetTrackingScalingPolicy
	Kind     MetricKind
	Settings Settings
	// UtilizationMetric is the series the policy reacts to, for charting.
	UtilizationMetric awscloudwatch.IMetric
}

// NewProvisionedConcurrencyScaling registers props.Alias as a scalable target
// and tracks the utilization metric selected by props.Kind.
func NewProvisionedConcurrencyScaling(scope constructs.Construct, id string, props *ProvisionedConcurrencyScalingProps) *ProvisionedConcurrencyScaling {
	if props == nil || props.Alias == nil {
		panic(fmt.Sprintf("Alias is required for scaling construct %s", id))
	}
	kind, err := ParseMetricKind(string(props.Kind))
	if err != nil {
		panic(fmt.Errorf("scaling construct %s: %w", id, err))
	}
	if err := props.Settings.Validate(); err != nil {
		panic(fmt.Errorf("scaling construct %s: %w", id, err))
	}

	construct := constructs.NewConstruct(scope, jsii.String(id))
	settings := props.Settings
	alias := props.Alias

	resourceID := fmt.Sprintf("function:%s:%s", *alias.Version().Lambda().FunctionName(), *alias.AliasName())
	target := awsapplicationautoscaling.NewScalableTarget(construct, jsii.String("Target"), &awsapplicationautoscaling.ScalableTargetProps{
		ServiceNamespace:  awsapplicationautoscaling.ServiceNamespace_LAMBDA,
		ResourceId:        jsii.String(resourceID),
		ScalableDimension: jsii.String(provisionedConcurrencyDim),
		MinCapacity:       jsii.Number(float64(settings.MinCapacity)),
		MaxCapacity:       jsii.Number(float64(settings.MaxCapacity)),
	})
	// the alias must carry its provisioned concurrency config before registration
	target.Node().AddDependency(alias)

	metric := UtilizationMetric(alias, kind)
	policyProps := &awsapplicationautoscaling.BasicTargetTrackingScalingPolicyProps{
		TargetValue:      jsii.Number(settings.TargetUtilization),
		ScaleInCooldown:  cooldown(settings.ScaleInCooldown),
		ScaleOutCooldown: cooldown(settings.ScaleOutCooldown),
	}
	switch kind {
	case MetricAverage:
		policyProps.PredefinedMetric = awsapplicationautoscaling.PredefinedMetric_LAMBDA_PROVISIONED_CONCURRENCY_UTILIZATION
	case MetricMaximum:
		policyProps.CustomMetric = metric
	}
	policy := target.ScaleToTrackMetric(jsii.String("Tracking"), policyProps)

	cdklogger.LogInfo(construct, id, "Tracking %s provisioned concurrency utilization at %.2f (scale-in below %.2f), capacity %d..%d",
		kind, settings.TargetUtilization, settings.ScaleInThreshold(), settings.MinCapacity, settings.MaxCapacity)

	return &ProvisionedConcurrencyScaling{
		Construct:         construct,
		Target:            target,
		Policy:            policy,
		Kind:              kind,
		Settings:          settings,
		UtilizationMetric: metric,
	}
}

// UtilizationMetric returns the alias's provisioned concurrency utilization
// with the statistic of kind over one-minute periods.
func UtilizationMetric(alias awslambda.IFunction, kind MetricKind) awscloudwatch.Metric {
	return alias.Metric(jsii.String(utilizationMetricName), &awscloudwatch.MetricOptions{
		Statistic: jsii.String(kind.Statistic()),
		Period:    awscdk.Duration_Minutes(jsii.Number(1)),
		Label:     jsii.String(fmt.Sprintf("utilization (%s)", kind.Statistic())),
	})
}

func cooldown(d time.Duration) awscdk.Duration {
	if d <= 0 {
		return nil
	}
	return awscdk.Duration_Seconds(jsii.Number(d.Seconds()))
}
