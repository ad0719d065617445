package loadtest

import (
	"fmt"
	"time"

	"github.com/fbiville/markdown-table-formatter/pkg/markdown"
	"github.com/samber/lo"

	"github.com/pcdemo/autoscaling/scripts/renderer"
)

var summaryHeaders = []string{"phase", "target", "requests", "errors", "p50", "p90", "p99", "max"}

// SummaryTable formats summaries as a markdown table.
func SummaryTable(summaries []Summary) (string, error) {
	rows := lo.Map(summaries, func(s Summary, _ int) []string {
		return []string{
			s.Phase,
			s.Target,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%d (%.1f%%)", s.Errors, s.ErrorRate()*100),
			ms(s.P50),
			ms(s.P90),
			ms(s.P99),
			ms(s.Max),
		}
	})
	return markdown.NewTableFormatterBuilder().
		WithPrettyPrint().
		Build(summaryHeaders...).
		Format(rows)
}

// Report renders the full markdown report of a run.
func Report(plan Plan, summaries []Summary, generatedAt time.Time) (string, error) {
	table, err := SummaryTable(summaries)
	if err != nil {
		return "", err
	}
	notes := []string{fmt.Sprintf("plan: %s (%s)", plan.Name, plan.TotalDuration())}
	for _, ph := range plan.Phases {
		notes = append(notes, fmt.Sprintf("%s: %s at %g rps, up to %d in flight", ph.Name, ph.Duration, ph.RPS, ph.Concurrency))
	}
	return renderer.Render(renderer.TplReport, renderer.ReportData{
		Title:       "Load test results",
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Notes:       notes,
		Sections:    []renderer.ReportSection{{Heading: "Latency per phase", Body: table}},
	})
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.1f ms", float64(d)/float64(time.Millisecond))
}
