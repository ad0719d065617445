package main

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/pcdemo/autoscaling/internal/cwreport"
	"github.com/pcdemo/autoscaling/internal/reportstore"
	"github.com/pcdemo/autoscaling/internal/stackinfo"
)

type metricsOptions struct {
	since  time.Duration
	period time.Duration
	out    string
}

func newMetricsCmd(flags *awsFlags) *cobra.Command {
	opts := &metricsOptions{}
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Compare the provisioned concurrency metrics of each subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMetrics(cmd, flags, opts)
		},
	}
	cmd.Flags().DurationVar(&opts.since, "since", time.Hour, "length of the window ending now")
	cmd.Flags().DurationVar(&opts.period, "period", time.Minute, "metric period, a whole number of minutes")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "also write the report to a file or s3://bucket/key")
	return cmd
}

func runMetrics(cmd *cobra.Command, flags *awsFlags, opts *metricsOptions) error {
	var out *reportstore.Location
	if opts.out != "" {
		loc, err := reportstore.ParseLocation(opts.out)
		if err != nil {
			return err
		}
		out = &loc
	}

	stack, err := describeStack(cmd, flags)
	if err != nil {
		return err
	}
	if missing, ok := lo.Find(stack.Subjects, func(s stackinfo.Subject) bool {
		return s.FunctionName == "" || s.AliasName == ""
	}); ok {
		return fmt.Errorf("stack %s does not export the function and alias of %s", stack.Name, missing.Name)
	}

	sess, err := flags.session()
	if err != nil {
		return fmt.Errorf("creating AWS session: %w", err)
	}
	w := cwreport.LastWindow(time.Now(), opts.since)
	w.Period = opts.period

	rows, err := cwreport.Collect(cmd.Context(), cloudwatch.New(sess), stack.Subjects, w)
	if err != nil {
		return err
	}
	report, err := cwreport.Report(rows, w)
	if err != nil {
		return err
	}
	return emitReport(cmd.Context(), cmd.OutOrStdout(), flags, out, report)
}
