// Package cwreport compares the provisioned concurrency metrics of the
// deployed subjects over a time window.
package cwreport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/samber/lo"

	"github.com/pcdemo/autoscaling/internal/stackinfo"
)

const namespace = "AWS/Lambda"

// GetMetricDataAPI is the part of cloudwatchiface.CloudWatchAPI used here.
type GetMetricDataAPI interface {
	GetMetricDataWithContext(aws.Context, *cloudwatch.GetMetricDataInput, ...request.Option) (*cloudwatch.GetMetricDataOutput, error)
}

type query struct {
	key       string
	metric    string
	statistic string
}

var queries = []query{
	{"utilavg", "ProvisionedConcurrencyUtilization", cloudwatch.StatisticAverage},
	{"utilmax", "ProvisionedConcurrencyUtilization", cloudwatch.StatisticMaximum},
	{"provisioned", "ProvisionedConcurrentExecutions", cloudwatch.StatisticMaximum},
	{"invocations", "Invocations", cloudwatch.StatisticSum},
	{"spillover", "ProvisionedConcurrencySpilloverInvocations", cloudwatch.StatisticSum},
}

// Window is the time range and resolution of a report.
type Window struct {
	Start  time.Time
	End    time.Time
	Period time.Duration
}

// LastWindow is the window ending now and lasting d, at one-minute resolution.
func LastWindow(now time.Time, d time.Duration) Window {
	return Window{Start: now.Add(-d), End: now, Period: time.Minute}
}

func (w Window) validate() error {
	if !w.End.After(w.Start) {
		return errors.New("window end must be after start")
	}
	if w.Period < time.Minute || w.Period%time.Minute != 0 {
		return fmt.Errorf("period must be a multiple of one minute, got %s", w.Period)
	}
	return nil
}

// Row is one subject's aggregate over the window.
type Row struct {
	Subject string
	// MeanUtilization averages the per-period Average statistic.
	MeanUtilization float64
	// PeakUtilization is the largest per-period Maximum.
	PeakUtilization float64
	PeakProvisioned float64
	Invocations     float64
	Spillover       float64
}

// SpilloverRate is the share of invocations not served by provisioned concurrency.
func (r Row) SpilloverRate() float64 {
	if r.Invocations == 0 {
		return 0
	}
	return r.Spillover / r.Invocations
}

// Collect queries the metrics of every subject in one GetMetricData call
// sequence and aggregates them per subject, in the order given.
func Collect(ctx context.Context, api GetMetricDataAPI, subjects []stackinfo.Subject, w Window) ([]Row, error) {
	if len(subjects) == 0 {
		return nil, errors.New("no subjects")
	}
	if err := w.validate(); err != nil {
		return nil, err
	}

	input := &cloudwatch.GetMetricDataInput{
		StartTime:         aws.Time(w.Start),
		EndTime:           aws.Time(w.End),
		MetricDataQueries: metricQueries(subjects, w.Period),
		ScanBy:            aws.String(cloudwatch.ScanByTimestampAscending),
	}

	values := map[string][]float64{}
	for {
		out, err := api.GetMetricDataWithContext(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("getting metric data: %w", err)
		}
		for _, res := range out.MetricDataResults {
			id := aws.StringValue(res.Id)
			values[id] = append(values[id], aws.Float64ValueSlice(res.Values)...)
		}
		if aws.StringValue(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}

	return lo.Map(subjects, func(s stackinfo.Subject, i int) Row {
		series := func(key string) []float64 { return values[queryID(i, key)] }
		return Row{
			Subject:         s.Name,
			MeanUtilization: mean(series("utilavg")),
			PeakUtilization: lo.Max(series("utilmax")),
			PeakProvisioned: lo.Max(series("provisioned")),
			Invocations:     lo.Sum(series("invocations")),
			Spillover:       lo.Sum(series("spillover")),
		}
	}), nil
}

func metricQueries(subjects []stackinfo.Subject, period time.Duration) []*cloudwatch.MetricDataQuery {
	var out []*cloudwatch.MetricDataQuery
	for i, s := range subjects {
		dims := []*cloudwatch.Dimension{
			{Name: aws.String("FunctionName"), Value: aws.String(s.FunctionName)},
			{Name: aws.String("Resource"), Value: aws.String(s.Resource())},
		}
		for _, q := range queries {
			out = append(out, &cloudwatch.MetricDataQuery{
				Id:    aws.String(queryID(i, q.key)),
				Label: aws.String(s.Name + " " + q.key),
				MetricStat: &cloudwatch.MetricStat{
					Metric: &cloudwatch.Metric{
						Namespace:  aws.String(namespace),
						MetricName: aws.String(q.metric),
						Dimensions: dims,
					},
					Period: aws.Int64(int64(period / time.Second)),
					Stat:   aws.String(q.statistic),
				},
				ReturnData: aws.Bool(true),
			})
		}
	}
	return out
}

// queryID must start with a lowercase letter and be unique per request.
func queryID(subject int, key string) string {
	return fmt.Sprintf("s%d%s", subject, key)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return lo.Sum(v) / float64(len(v))
}
