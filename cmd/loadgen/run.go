package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pcdemo/autoscaling/internal/loadtest"
	"github.com/pcdemo/autoscaling/internal/reportstore"
)

type runOptions struct {
	plan     string
	urls     []string
	subjects []string
	out      string
	waitFor  time.Duration
}

func newRunCmd(flags *awsFlags) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play a load plan against every subject at once",
		Long: `Run plays each phase of the plan against all targets simultaneously and
prints latency percentiles per target and phase.

Targets are read from the stack outputs unless --url is given.`,
		Example: `  loadgen run
  loadgen run --plan plans/burst.toml --subject Maximum
  loadgen run --url avg=https://abc.execute-api.eu-west-1.amazonaws.com/prod/ --out s3://reports/run.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, flags, opts)
		},
	}
	cmd.Flags().StringVar(&opts.plan, "plan", "", "TOML load plan (default: built-in plan)")
	cmd.Flags().StringArrayVar(&opts.urls, "url", nil, "target as name=url, repeatable; skips stack discovery")
	cmd.Flags().StringSliceVar(&opts.subjects, "subject", nil, "only load these stack subjects")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "also write the report to a file or s3://bucket/key")
	cmd.Flags().DurationVar(&opts.waitFor, "wait", 2*time.Minute, "how long to wait for every target to answer before loading, 0 to skip")
	cmd.MarkFlagsMutuallyExclusive("url", "subject")
	return cmd
}

func runLoad(cmd *cobra.Command, flags *awsFlags, opts *runOptions) error {
	plan := loadtest.DefaultPlan()
	if opts.plan != "" {
		var err error
		if plan, err = loadtest.LoadPlan(opts.plan); err != nil {
			return err
		}
	}

	var out *reportstore.Location
	if opts.out != "" {
		loc, err := reportstore.ParseLocation(opts.out)
		if err != nil {
			return err
		}
		out = &loc
	}

	targets, err := parseTargets(opts.urls)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		stack, err := describeStack(cmd, flags)
		if err != nil {
			return err
		}
		if targets, err = stackTargets(stack, opts.subjects); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runID := uuid.NewString()
	logger := zap.L().With(zap.String("run", runID))
	logger.Info("starting load run",
		zap.String("plan", plan.Name),
		zap.Duration("duration", plan.TotalDuration()),
		zap.Int("targets", len(targets)),
	)

	runner := loadtest.NewRunner(
		loadtest.WithLogger(logger),
		loadtest.WithRunID(runID),
	)
	if opts.waitFor > 0 {
		if err := runner.WaitReady(ctx, targets, opts.waitFor); err != nil {
			return err
		}
	}
	samples, runErr := runner.Run(ctx, targets, plan)
	if runErr != nil && len(samples) == 0 {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run interrupted, reporting partial results", zap.Error(runErr))
	}

	report, err := loadtest.Report(plan, loadtest.Summarize(samples), time.Now())
	if err != nil {
		return err
	}
	return emitReport(context.WithoutCancel(ctx), cmd.OutOrStdout(), flags, out, report)
}

// emitReport prints report and, when out is set, stores a copy there.
func emitReport(ctx context.Context, w io.Writer, flags *awsFlags, out *reportstore.Location, report string) error {
	if _, err := io.WriteString(w, report); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	store := reportstore.Store{}
	if out.IsS3() {
		sess, err := flags.session()
		if err != nil {
			return fmt.Errorf("creating AWS session: %w", err)
		}
		store.S3 = s3.New(sess)
	}
	if err := store.Write(ctx, *out, report); err != nil {
		return err
	}
	zap.L().Info("report written", zap.Stringer("location", out))
	return nil
}
