package fronting

import (
	"encoding/json"
	"slices"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"
)

// accessLogFields maps access-log keys to API Gateway context variables.
// The same variables exist for REST and HTTP APIs.
var accessLogFields = map[string]string{
	"requestId":          "$context.requestId",
	"ip":                 "$context.identity.sourceIp",
	"requestTime":        "$context.requestTime",
	"httpMethod":         "$context.httpMethod",
	"path":               "$context.path",
	"status":             "$context.status",
	"protocol":           "$context.protocol",
	"responseLength":     "$context.responseLength",
	"responseLatency":    "$context.responseLatency",
	"integrationLatency": "$context.integrationLatency",
}

// AccessLogFormat is the single-line JSON access log format.
func AccessLogFormat() string {
	b, err := json.Marshal(accessLogFields)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// AccessLogFieldNames lists, sorted, the keys written to every access-log line.
func AccessLogFieldNames() []string {
	names := lo.Keys(accessLogFields)
	slices.Sort(names)
	return names
}

func newAccessLogGroup(scope constructs.Construct, id string, retention awslogs.RetentionDays) awslogs.LogGroup {
	if retention == "" {
		retention = awslogs.RetentionDays_ONE_WEEK
	}
	return awslogs.NewLogGroup(scope, jsii.String(id+"AccessLogs"), &awslogs.LogGroupProps{
		Retention:     retention,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})
}
