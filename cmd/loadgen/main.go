package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultStackName = "PcAutoscalingDemo"

func init() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
}

// awsFlags are shared by every subcommand that talks to AWS.
type awsFlags struct {
	stack   string
	region  string
	profile string
}

func (f *awsFlags) session() (*session.Session, error) {
	cfg := aws.Config{}
	if f.region != "" {
		cfg.Region = aws.String(f.region)
	}
	return session.NewSessionWithOptions(session.Options{
		Config:            cfg,
		Profile:           f.profile,
		SharedConfigState: session.SharedConfigEnable,
	})
}

func main() {
	defer zap.L().Sync() //nolint:errcheck

	flags := &awsFlags{}
	rootCmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Drive load against the provisioned concurrency demo and compare the results",
		Long: `loadgen sends the same traffic shape to every deployed scaling strategy,
then reports request latency per phase and the provisioned concurrency
metrics CloudWatch recorded for each alias.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.stack, "stack", defaultStackName, "CloudFormation stack of the demo")
	rootCmd.PersistentFlags().StringVar(&flags.region, "region", "", "AWS region (default from the shared config)")
	rootCmd.PersistentFlags().StringVar(&flags.profile, "profile", "", "AWS shared config profile")

	rootCmd.AddCommand(
		newEndpointsCmd(flags),
		newRunCmd(flags),
		newMetricsCmd(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
