package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/pcdemo/autoscaling/internal/workload"
)

// -------------------------------------------------------------------------------------------------
// Simulated workload Lambda
// - pays COLD_START_TIME_MILLIS once per execution environment
// - pays WORKING_TIME_MILLIS on every invocation
// - always answers 200 "OK"
// -------------------------------------------------------------------------------------------------

func main() {
	logger := zap.Must(zap.NewProduction())
	defer logger.Sync() //nolint:errcheck

	cfg := workload.LoadConfig(logger)
	logger.Info("workload configured",
		zap.String("profile", string(cfg.Profile)),
		zap.Duration("workTime", cfg.WorkTime),
		zap.Duration("coldStartTime", cfg.ColdStartTime),
	)

	h := workload.New(cfg, workload.WithLogger(logger))
	lambda.Start(h.Handle)
}
