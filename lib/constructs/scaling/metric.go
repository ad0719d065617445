package scaling

import (
	"fmt"
	"strings"
)

// MetricKind selects the utilization signal a scaling policy tracks.
type MetricKind string

const (
	// MetricAverage tracks the predefined LambdaProvisionedConcurrencyUtilization
	// metric, which Application Auto Scaling evaluates as an average.
	MetricAverage MetricKind = "average"
	// MetricMaximum tracks the maximum of ProvisionedConcurrencyUtilization per
	// minute, so short bursts are not averaged away.
	MetricMaximum MetricKind = "maximum"
)

// Statistic is the CloudWatch statistic matching the kind.
func (k MetricKind) Statistic() string {
	if k == MetricMaximum {
		return "Maximum"
	}
	return "Average"
}

// ParseMetricKind converts a raw string into a MetricKind.
func ParseMetricKind(s string) (MetricKind, error) {
	switch k := MetricKind(strings.ToLower(strings.TrimSpace(s))); k {
	case MetricAverage, MetricMaximum:
		return k, nil
	default:
		return "", fmt.Errorf("invalid scaling metric %q", s)
	}
}
