package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/pcdemo/autoscaling/config"
	"github.com/pcdemo/autoscaling/internal/stackinfo"
	"github.com/pcdemo/autoscaling/lib/constructs/dashboard"
	"github.com/pcdemo/autoscaling/lib/constructs/fronting"
	"github.com/pcdemo/autoscaling/lib/constructs/scaling"
	"github.com/pcdemo/autoscaling/lib/constructs/workload_function"
)

type AutoscalingDemoStackProps struct {
	awscdk.StackProps
	// ModuleDir is the Go module holding cmd/workload; found from the working
	// directory when empty.
	ModuleDir string
}

// DemoSubject is one scaling strategy under comparison.
type DemoSubject struct {
	Name   string
	Metric scaling.MetricKind
}

// DemoSubjects are deployed side by side with identical workloads.
var DemoSubjects = []DemoSubject{
	{Name: "Average", Metric: scaling.MetricAverage},
	{Name: "Maximum", Metric: scaling.MetricMaximum},
}

// AutoscalingDemoStack deploys one API-fronted workload per subject, scales
// each alias on its own utilization statistic and charts both on one dashboard.
func AutoscalingDemoStack(scope constructs.Construct, id string, props *AutoscalingDemoStackProps) awscdk.Stack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	} else {
		props = &AutoscalingDemoStackProps{}
	}
	stack := awscdk.NewStack(scope, jsii.String(id), &sprops)

	envVars := config.GetEnvironmentVariables[config.SynthEnvironmentVariables](stack)
	cdkParams := config.NewCDKParams(stack)
	profile := config.WorkloadProfile(stack)
	packaging := config.Packaging(stack, envVars)
	settings := config.ScalingSettings(stack)
	provisioned := config.ProvisionedConcurrency(stack, settings)
	front := fronting.New(config.GetFrontingKind(stack))

	subjects := make([]dashboard.Subject, 0, len(DemoSubjects))
	for _, subject := range DemoSubjects {
		workload := workload_function.NewWorkloadFunction(stack, subject.Name+"Workload", &workload_function.WorkloadFunctionProps{
			Profile:                profile,
			Packaging:              packaging,
			ModuleDir:              props.ModuleDir,
			ProvisionedConcurrency: provisioned,
			GoProxy:                envVars.GoProxy,
		})

		api := front.AttachLambda(stack, subject.Name+"Api", &fronting.FrontingProps{
			Handler:          workload.Alias,
			CorsAllowOrigins: cdkParams.CorsAllowOrigins.ValueAsString(),
		})

		scaler := scaling.NewProvisionedConcurrencyScaling(stack, subject.Name+"Scaling", &scaling.ProvisionedConcurrencyScalingProps{
			Alias:    workload.Alias,
			Kind:     subject.Metric,
			Settings: settings,
		})

		output(stack, stackinfo.OutputKey(subject.Name, stackinfo.SuffixApiUrl), api.Url,
			"Invoke URL of the API scaled on "+string(subject.Metric)+" utilization")
		output(stack, stackinfo.OutputKey(subject.Name, stackinfo.SuffixFunctionName), workload.Function.FunctionName(), "")
		output(stack, stackinfo.OutputKey(subject.Name, stackinfo.SuffixAliasName), workload.Alias.AliasName(), "")

		subjects = append(subjects, dashboard.Subject{
			Name:           subject.Name,
			Alias:          workload.Alias,
			Api:            api.Metrics,
			AccessLogGroup: api.AccessLogGroup,
			Scaling:        scaler,
			Workload:       workload.Config,
		})
	}

	dash := dashboard.NewDashboard(stack, "Dashboard", &dashboard.DashboardProps{
		DashboardName: config.DashboardName(stack),
		Subjects:      subjects,
	})
	output(stack, stackinfo.OutputDashboardName, jsii.String(dash.Name), "")

	return stack
}

func output(stack awscdk.Stack, id string, value *string, description string) {
	props := &awscdk.CfnOutputProps{Value: value}
	if description != "" {
		props.Description = jsii.String(description)
	}
	awscdk.NewCfnOutput(stack, jsii.String(id), props)
}
