package stacks

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/suite"

	"github.com/pcdemo/autoscaling/lib/constructs/workload_function"
	"github.com/pcdemo/autoscaling/tests/testutil"
)

type DemoStackSuite struct {
	suite.Suite
	moduleDir string
}

func TestDemoStackSuite(t *testing.T) {
	suite.Run(t, new(DemoStackSuite))
}

func (s *DemoStackSuite) SetupTest() {
	s.moduleDir = testutil.TmpGoModule(s.T(), workload_function.HandlerPackage)
}

func (s *DemoStackSuite) synth(context map[string]interface{}) assertions.Template {
	app := testutil.NewSynthApp(context)
	stack := AutoscalingDemoStack(app, "Demo", &AutoscalingDemoStackProps{
		StackProps: awscdk.StackProps{Description: jsii.String("test")},
		ModuleDir:  s.moduleDir,
	})
	return assertions.Template_FromStack(stack, nil)
}

func (s *DemoStackSuite) TestDefaultStack() {
	template := s.synth(nil)

	template.ResourceCountIs(jsii.String("AWS::Lambda::Alias"), jsii.Number(2))
	template.ResourceCountIs(jsii.String("AWS::ApiGateway::RestApi"), jsii.Number(2))
	template.ResourceCountIs(jsii.String("AWS::ApplicationAutoScaling::ScalableTarget"), jsii.Number(2))
	template.ResourceCountIs(jsii.String("AWS::ApplicationAutoScaling::ScalingPolicy"), jsii.Number(2))
	template.ResourceCountIs(jsii.String("AWS::CloudWatch::Dashboard"), jsii.Number(1))

	// one policy on the predefined average metric, one on the custom maximum
	template.HasResourceProperties(jsii.String("AWS::ApplicationAutoScaling::ScalingPolicy"), map[string]interface{}{
		"TargetTrackingScalingPolicyConfiguration": assertions.Match_ObjectLike(&map[string]interface{}{
			"PredefinedMetricSpecification": map[string]interface{}{
				"PredefinedMetricType": "LambdaProvisionedConcurrencyUtilization",
			},
		}),
	})
	template.HasResourceProperties(jsii.String("AWS::ApplicationAutoScaling::ScalingPolicy"), map[string]interface{}{
		"TargetTrackingScalingPolicyConfiguration": assertions.Match_ObjectLike(&map[string]interface{}{
			"CustomizedMetricSpecification": assertions.Match_ObjectLike(&map[string]interface{}{
				"Statistic": "Maximum",
			}),
		}),
	})

	for _, key := range []string{
		"AverageApiUrl", "AverageFunctionName", "AverageAliasName",
		"MaximumApiUrl", "MaximumFunctionName", "MaximumAliasName",
	} {
		template.HasOutput(jsii.String(key), map[string]interface{}{})
	}
	template.HasOutput(jsii.String("DashboardName"), map[string]interface{}{
		"Value": "Demo-pc-autoscaling",
	})
	template.HasParameter(jsii.String("corsAllowOrigins"), map[string]interface{}{
		"Default": "*",
	})
}

func (s *DemoStackSuite) TestContextOverrides() {
	template := s.synth(map[string]interface{}{
		"frontingType":      "http",
		"workloadProfile":   "slow-start",
		"minCapacity":       2,
		"maxCapacity":       6,
		"targetUtilization": 0.5,
		"dashboardName":     "compare",
	})

	template.ResourceCountIs(jsii.String("AWS::ApiGatewayV2::Api"), jsii.Number(2))
	template.ResourceCountIs(jsii.String("AWS::ApiGateway::RestApi"), jsii.Number(0))
	template.HasResourceProperties(jsii.String("AWS::ApplicationAutoScaling::ScalableTarget"), map[string]interface{}{
		"MinCapacity": 2,
		"MaxCapacity": 6,
	})
	template.HasResourceProperties(jsii.String("AWS::Lambda::Alias"), map[string]interface{}{
		"ProvisionedConcurrencyConfig": map[string]interface{}{
			"ProvisionedConcurrentExecutions": 2,
		},
	})
	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]interface{}{
		"Environment": map[string]interface{}{
			"Variables": assertions.Match_ObjectLike(&map[string]interface{}{
				"WORKLOAD_PROFILE":       "slow-start",
				"COLD_START_TIME_MILLIS": "500",
			}),
		},
	})
	template.HasOutput(jsii.String("DashboardName"), map[string]interface{}{
		"Value": "compare",
	})
}

func (s *DemoStackSuite) TestInvalidContextPanics() {
	s.Require().Panics(func() { s.synth(map[string]interface{}{"frontingType": "alb"}) })
	s.Require().Panics(func() { s.synth(map[string]interface{}{"targetUtilization": 2}) })
}
