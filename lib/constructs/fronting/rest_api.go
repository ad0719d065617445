package fronting

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// restApi proxies through an API Gateway REST API. REST stages publish the
// richest per-stage metrics and support custom access-log formats natively.
type restApi struct{}

func (r *restApi) Kind() Kind { return KindRest }

func (r *restApi) AttachLambda(scope constructs.Construct, id string, props *FrontingProps) FrontingResult {
	if props == nil || props.Handler == nil {
		panic(fmt.Sprintf("Handler is required for restApi construct %s", id))
	}

	stageName := props.StageName
	if stageName == nil || *stageName == "" {
		stageName = jsii.String("prod")
	}

	logGroup := newAccessLogGroup(scope, id, props.AccessLogRetention)

	var cors *awsapigateway.CorsOptions
	if props.CorsAllowOrigins != nil {
		cors = &awsapigateway.CorsOptions{
			AllowOrigins: &[]*string{props.CorsAllowOrigins},
			AllowMethods: awsapigateway.Cors_ALL_METHODS(),
		}
	}

	api := awsapigateway.NewLambdaRestApi(scope, jsii.String(id+"RestApi"), &awsapigateway.LambdaRestApiProps{
		RestApiName:    jsii.String(id + "RestApi"),
		Handler:        props.Handler,
		Proxy:          jsii.Bool(true),
		CloudWatchRole: jsii.Bool(true),
		DeployOptions: &awsapigateway.StageOptions{
			StageName:            stageName,
			MetricsEnabled:       jsii.Bool(true),
			AccessLogDestination: awsapigateway.NewLogGroupLogDestination(logGroup),
			AccessLogFormat:      awsapigateway.AccessLogFormat_Custom(jsii.String(AccessLogFormat())),
		},
		DefaultCorsPreflightOptions: cors,
	})

	period := awscdk.Duration_Minutes(jsii.Number(1))
	return FrontingResult{
		Url:            api.Url(),
		AccessLogGroup: logGroup,
		Metrics: ApiMetrics{
			Count:        api.MetricCount(&awscloudwatch.MetricOptions{Statistic: jsii.String("Sum"), Period: period}),
			ClientErrors: api.MetricClientError(&awscloudwatch.MetricOptions{Statistic: jsii.String("Sum"), Period: period}),
			ServerErrors: api.MetricServerError(&awscloudwatch.MetricOptions{Statistic: jsii.String("Sum"), Period: period}),
			Latency: func(statistic string) awscloudwatch.IMetric {
				return api.MetricLatency(&awscloudwatch.MetricOptions{
					Statistic: jsii.String(statistic),
					Period:    period,
					Label:     jsii.String("latency " + statistic),
				})
			},
		},
	}
}
