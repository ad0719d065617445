package loadtest

import (
	"math"
	"slices"
	"time"

	"github.com/samber/lo"
)

// Summary aggregates the samples of one target in one phase.
type Summary struct {
	Target string
	Phase  string
	Count  int
	Errors int
	P50    time.Duration
	P90    time.Duration
	P99    time.Duration
	Max    time.Duration
}

// ErrorRate is Errors/Count, zero for an empty summary.
func (s Summary) ErrorRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Count)
}

// Summarize groups samples by phase, in the order phases first appear, and
// by target name within a phase.
func Summarize(samples []Sample) []Summary {
	phases := lo.Uniq(lo.Map(samples, func(s Sample, _ int) string { return s.Phase }))
	byPhase := lo.GroupBy(samples, func(s Sample) string { return s.Phase })

	var out []Summary
	for _, phase := range phases {
		byTarget := lo.GroupBy(byPhase[phase], func(s Sample) string { return s.Target })
		targets := lo.Keys(byTarget)
		slices.Sort(targets)
		for _, target := range targets {
			out = append(out, summarize(target, phase, byTarget[target]))
		}
	}
	return out
}

func summarize(target, phase string, samples []Sample) Summary {
	latencies := lo.Map(samples, func(s Sample, _ int) time.Duration { return s.Latency })
	slices.Sort(latencies)
	return Summary{
		Target: target,
		Phase:  phase,
		Count:  len(samples),
		Errors: lo.CountBy(samples, Sample.Failed),
		P50:    Percentile(latencies, 50),
		P90:    Percentile(latencies, 90),
		P99:    Percentile(latencies, 99),
		Max:    lo.Max(latencies),
	}
}

// Percentile returns the nearest-rank percentile p of sorted latencies.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	rank = min(max(rank, 1), len(sorted))
	return sorted[rank-1]
}
