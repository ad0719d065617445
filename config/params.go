package config

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// Constants for CDK parameter names
const (
	CorsParamName = "corsAllowOrigins"
)

type CDKParams struct {
	CorsAllowOrigins awscdk.CfnParameter
}

// NewCDKParams declares the deploy-time parameters shared by both APIs.
func NewCDKParams(scope constructs.Construct) CDKParams {
	corsAllowOrigins := awscdk.NewCfnParameter(scope, jsii.String(CorsParamName), &awscdk.CfnParameterProps{
		Type:        jsii.String("String"),
		Description: jsii.String("Origin allowed to call the demo APIs from a browser"),
		Default:     jsii.String("*"),
	})

	return CDKParams{
		CorsAllowOrigins: corsAllowOrigins,
	}
}
