// Package dashboard builds the CloudWatch dashboard comparing the scaling
// strategies, one column per subject.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"

	"github.com/pcdemo/autoscaling/internal/workload"
	"github.com/pcdemo/autoscaling/lib/cdklogger"
	"github.com/pcdemo/autoscaling/lib/constructs/fronting"
	"github.com/pcdemo/autoscaling/lib/constructs/scaling"
	"github.com/pcdemo/autoscaling/scripts/renderer"
)

const (
	dashboardWidth = 24
	graphHeight    = 6
	headerHeight   = 5
)

// AccessLogQuery summarizes the JSON access log by status.
var AccessLogQuery = []string{
	"fields @timestamp, status, responseLatency",
	"filter ispresent(status)",
	"stats count(*) as requests, pct(responseLatency, 50) as p50, pct(responseLatency, 99) as p99 by status",
	"sort status asc",
}

// Subject is one column of the dashboard.
type Subject struct {
	Name           string
	Alias          awslambda.IFunction
	Api            fronting.ApiMetrics
	AccessLogGroup awslogs.ILogGroup
	Scaling        *scaling.ProvisionedConcurrencyScaling
	Workload       workload.Config
}

type DashboardProps struct {
	// DashboardName defaults to "<stack name>-pc-autoscaling".
	DashboardName string
	Title         string
	Subjects      []Subject
}

type Dashboard struct {
	constructs.Construct
	Dashboard awscloudwatch.Dashboard
	Name      string
}

func NewDashboard(scope constructs.Construct, id string, props *DashboardProps) *Dashboard {
	if props == nil || len(props.Subjects) == 0 {
		panic(fmt.Sprintf("dashboard %s needs at least one subject", id))
	}
	for _, s := range props.Subjects {
		if s.Alias == nil || s.Scaling == nil || s.AccessLogGroup == nil {
			panic(fmt.Sprintf("dashboard %s: subject %q is incomplete", id, s.Name))
		}
	}

	construct := constructs.NewConstruct(scope, jsii.String(id))
	name := props.DashboardName
	if name == "" {
		name = *awscdk.Stack_Of(scope).StackName() + "-pc-autoscaling"
	}
	title := lo.Ternary(props.Title != "", props.Title, "Provisioned concurrency autoscaling")

	dashboard := awscloudwatch.NewDashboard(construct, jsii.String("Dashboard"), &awscloudwatch.DashboardProps{
		DashboardName:   jsii.String(name),
		DefaultInterval: awscdk.Duration_Hours(jsii.Number(1)),
	})

	dashboard.AddWidgets(awscloudwatch.NewTextWidget(&awscloudwatch.TextWidgetProps{
		Markdown: jsii.String(renderer.MustRender(renderer.TplDashboardHeader, headerData(title, props.Subjects))),
		Width:    jsii.Number(dashboardWidth),
		Height:   jsii.Number(headerHeight),
	}))

	width := float64(dashboardWidth / len(props.Subjects))
	for _, row := range rows {
		widgets := lo.Map(props.Subjects, func(s Subject, _ int) awscloudwatch.IWidget {
			return row(s, width)
		})
		dashboard.AddWidgets(widgets...)
	}

	cdklogger.LogInfo(construct, id, "Dashboard %s compares %s", name,
		strings.Join(lo.Map(props.Subjects, func(s Subject, _ int) string { return s.Name }), ", "))

	return &Dashboard{
		Construct: construct,
		Dashboard: dashboard,
		Name:      name,
	}
}

func headerData(title string, subjects []Subject) renderer.DashboardHeaderData {
	return renderer.DashboardHeaderData{
		Title: title,
		Subjects: lo.Map(subjects, func(s Subject, _ int) renderer.DashboardSubject {
			settings := s.Scaling.Settings
			return renderer.DashboardSubject{
				Name:          s.Name,
				Metric:        string(s.Scaling.Kind),
				Target:        settings.TargetUtilization,
				ScaleIn:       settings.ScaleInThreshold(),
				MinCapacity:   settings.MinCapacity,
				MaxCapacity:   settings.MaxCapacity,
				WorkTime:      s.Workload.WorkTime,
				ColdStartTime: s.Workload.ColdStartTime,
			}
		}),
	}
}

// rows are laid out top to bottom; each yields one widget per subject.
var rows = []func(s Subject, width float64) awscloudwatch.IWidget{
	apiCallsWidget,
	apiErrorsWidget,
	apiLatencyWidget,
	concurrencyWidget,
	utilizationWidget,
	invocationsWidget,
	accessLogWidget,
}

func graph(title string, width float64, left ...awscloudwatch.IMetric) *awscloudwatch.GraphWidgetProps {
	return &awscloudwatch.GraphWidgetProps{
		Title:  jsii.String(title),
		Left:   &left,
		Width:  jsii.Number(width),
		Height: jsii.Number(graphHeight),
	}
}

func apiCallsWidget(s Subject, width float64) awscloudwatch.IWidget {
	return awscloudwatch.NewGraphWidget(graph(s.Name+": API calls", width, s.Api.Count))
}

func apiErrorsWidget(s Subject, width float64) awscloudwatch.IWidget {
	return awscloudwatch.NewGraphWidget(graph(s.Name+": API errors", width, s.Api.ClientErrors, s.Api.ServerErrors))
}

func apiLatencyWidget(s Subject, width float64) awscloudwatch.IWidget {
	return awscloudwatch.NewGraphWidget(graph(s.Name+": API latency", width,
		s.Api.Latency("p50"), s.Api.Latency("p90"), s.Api.Latency("p99")))
}

func concurrencyWidget(s Subject, width float64) awscloudwatch.IWidget {
	return awscloudwatch.NewGraphWidget(graph(s.Name+": concurrency", width,
		lambdaMetric(s.Alias, "ConcurrentExecutions", "Maximum", "concurrent executions"),
		lambdaMetric(s.Alias, "ProvisionedConcurrentExecutions", "Maximum", "provisioned concurrent executions"),
	))
}

func utilizationWidget(s Subject, width float64) awscloudwatch.IWidget {
	props := graph(fmt.Sprintf("%s: provisioned concurrency utilization (scaling on %s)", s.Name, s.Scaling.Kind), width,
		scaling.UtilizationMetric(s.Alias, scaling.MetricAverage),
		scaling.UtilizationMetric(s.Alias, scaling.MetricMaximum),
	)
	settings := s.Scaling.Settings
	props.LeftAnnotations = &[]*awscloudwatch.HorizontalAnnotation{
		{Value: jsii.Number(settings.TargetUtilization), Label: jsii.String("target"), Color: awscloudwatch.Color_RED()},
		{Value: jsii.Number(settings.ScaleInThreshold()), Label: jsii.String("scale-in"), Color: awscloudwatch.Color_GREEN()},
	}
	props.LeftYAxis = &awscloudwatch.YAxisProps{Min: jsii.Number(0), Max: jsii.Number(1), ShowUnits: jsii.Bool(false)}
	return awscloudwatch.NewGraphWidget(props)
}

func invocationsWidget(s Subject, width float64) awscloudwatch.IWidget {
	return awscloudwatch.NewGraphWidget(graph(s.Name+": invocations", width,
		lambdaMetric(s.Alias, "Invocations", "Sum", "invocations"),
		lambdaMetric(s.Alias, "ProvisionedConcurrencySpilloverInvocations", "Sum", "spillover invocations"),
	))
}

func accessLogWidget(s Subject, width float64) awscloudwatch.IWidget {
	return awscloudwatch.NewLogQueryWidget(&awscloudwatch.LogQueryWidgetProps{
		Title:         jsii.String(s.Name + ": access log by status"),
		LogGroupNames: jsii.Strings(*s.AccessLogGroup.LogGroupName()),
		QueryLines:    jsii.Strings(AccessLogQuery...),
		View:          awscloudwatch.LogQueryVisualizationType_TABLE,
		Width:         jsii.Number(width),
		Height:        jsii.Number(graphHeight),
	})
}

func lambdaMetric(fn awslambda.IFunction, name, statistic, label string) awscloudwatch.IMetric {
	return fn.Metric(jsii.String(name), &awscloudwatch.MetricOptions{
		Statistic: jsii.String(statistic),
		Period:    awscdk.Duration_Minutes(jsii.Number(1)),
		Label:     jsii.String(label),
	})
}
