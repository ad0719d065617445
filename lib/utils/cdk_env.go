package utils

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/caarlos0/env/v11"
)

type deployEnv struct {
	DeployAccount  string `env:"CDK_DEPLOY_ACCOUNT"`
	DeployRegion   string `env:"CDK_DEPLOY_REGION"`
	DefaultAccount string `env:"CDK_DEFAULT_ACCOUNT"`
	DefaultRegion  string `env:"CDK_DEFAULT_REGION"`
}

// CdkEnv picks the account and region to deploy to. An explicit
// CDK_DEPLOY_* pair wins over the CLI defaults. Nil means an
// environment-agnostic stack. See https://docs.aws.amazon.com/cdk/latest/guide/environments.html
func CdkEnv() *awscdk.Environment {
	vars, err := env.ParseAs[deployEnv]()
	if err != nil {
		panic(err)
	}

	account, region := vars.DeployAccount, vars.DeployRegion
	if account == "" || region == "" {
		account, region = vars.DefaultAccount, vars.DefaultRegion
	}
	if account == "" && region == "" {
		return nil
	}

	return &awscdk.Environment{
		Account: jsii.String(account),
		Region:  jsii.String(region),
	}
}
