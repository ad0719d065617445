package fronting

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigatewayv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigatewayv2integrations"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// httpApi proxies through an API Gateway HTTP API: cheaper per request and
// lower overhead than REST, with a single $default stage.
type httpApi struct{}

func (h *httpApi) Kind() Kind { return KindHttp }

func (h *httpApi) AttachLambda(scope constructs.Construct, id string, props *FrontingProps) FrontingResult {
	if props == nil || props.Handler == nil {
		panic(fmt.Sprintf("Handler is required for httpApi construct %s", id))
	}

	integration := awsapigatewayv2integrations.NewHttpLambdaIntegration(
		jsii.String(id+"Integration"),
		props.Handler,
		&awsapigatewayv2integrations.HttpLambdaIntegrationProps{},
	)

	var cors *awsapigatewayv2.CorsPreflightOptions
	if props.CorsAllowOrigins != nil {
		cors = &awsapigatewayv2.CorsPreflightOptions{
			AllowOrigins: &[]*string{props.CorsAllowOrigins},
			AllowMethods: &[]awsapigatewayv2.CorsHttpMethod{awsapigatewayv2.CorsHttpMethod_ANY},
		}
	}

	api := awsapigatewayv2.NewHttpApi(scope, jsii.String(id+"HttpApi"), &awsapigatewayv2.HttpApiProps{
		ApiName:            jsii.String(id + "HttpApi"),
		DefaultIntegration: integration,
		CorsPreflight:      cors,
	})

	// The L2 stage has no access-log setting, so configure the L1 resource.
	logGroup := newAccessLogGroup(scope, id, props.AccessLogRetention)
	stage := api.DefaultStage().Node().DefaultChild().(awsapigatewayv2.CfnStage)
	stage.SetAccessLogSettings(&awsapigatewayv2.CfnStage_AccessLogSettingsProperty{
		DestinationArn: logGroup.LogGroupArn(),
		Format:         jsii.String(AccessLogFormat()),
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
