package fronting

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
)

// FrontingProps holds the inputs needed to put an API in front of a function.
type FrontingProps struct {
	// Handler receives every request; usually a provisioned alias.
	Handler awslambda.IFunction
	// CorsAllowOrigins is a single origin (or "*"); nil disables CORS preflight.
	CorsAllowOrigins *string
	// StageName defaults to "prod" for REST APIs; HTTP APIs use $default.
	StageName *string
	// AccessLogRetention defaults to one week.
	AccessLogRetention awslogs.RetentionDays
}

// ApiMetrics are the per-API CloudWatch metrics the dashboard charts.
type ApiMetrics struct {
	Count        awscloudwatch.IMetric
	ClientErrors awscloudwatch.IMetric
	ServerErrors awscloudwatch.IMetric
	// Latency returns end-to-end latency for a statistic such as "p90".
	Latency func(statistic string) awscloudwatch.IMetric
}

// FrontingResult is what a stack needs to publish and observe the API.
type FrontingResult struct {
	Url            *string
	AccessLogGroup awslogs.ILogGroup
	Metrics        ApiMetrics
}

// Fronting provisions a public API that proxies every path to a function
// and writes one structured access-log line per request.
type Fronting interface {
	AttachLambda(scope constructs.Construct, id string, props *FrontingProps) FrontingResult
	Kind() Kind
}

// NewRestApiFronting returns a Fronting implemented with API Gateway REST.
func NewRestApiFronting() Fronting {
	return &restApi{}
}

// NewHttpApiFronting returns a Fronting implemented with API Gateway HTTP API.
func NewHttpApiFronting() Fronting {
	return &httpApi{}
}
