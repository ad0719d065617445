package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"

	"github.com/pcdemo/autoscaling/config"
	"github.com/pcdemo/autoscaling/lib/utils"
	"github.com/pcdemo/autoscaling/stacks"
)

func main() {
	defer jsii.Close()

	app := awscdk.NewApp(nil)

	stacks.AutoscalingDemoStack(
		app,
		config.WithStackSuffix(app, config.StackName(app)),
		&stacks.AutoscalingDemoStackProps{
			StackProps: awscdk.StackProps{
				Env:         utils.CdkEnv(),
				Description: jsii.String("Compares provisioned concurrency autoscaling on average versus maximum utilization"),
			},
		},
	)

	app.Synth(nil)
}
