package cwreport

import (
	"fmt"
	"time"

	"github.com/fbiville/markdown-table-formatter/pkg/markdown"
	"github.com/samber/lo"

	"github.com/pcdemo/autoscaling/scripts/renderer"
)

// Table formats rows as a markdown table.
func Table(rows []Row) (string, error) {
	return markdown.NewTableFormatterBuilder().
		WithPrettyPrint().
		Build("subject", "mean utilization", "peak utilization", "peak provisioned", "invocations", "spillover").
		Format(lo.Map(rows, func(r Row, _ int) []string {
			return []string{
				r.Subject,
				pct(r.MeanUtilization),
				pct(r.PeakUtilization),
				fmt.Sprintf("%.0f", r.PeakProvisioned),
				fmt.Sprintf("%.0f", r.Invocations),
				fmt.Sprintf("%.0f (%s)", r.Spillover, pct(r.SpilloverRate())),
			}
		}))
}

// Report renders rows as a markdown document for window w.
func Report(rows []Row, w Window) (string, error) {
	table, err := Table(rows)
	if err != nil {
		return "", err
	}
	return renderer.Render(renderer.TplReport, renderer.ReportData{
		Title: "Provisioned concurrency metrics",
		Notes: []string{
			fmt.Sprintf("window: %s to %s", w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339)),
			fmt.Sprintf("period: %s", w.Period),
		},
		Sections: []renderer.ReportSection{{Heading: "Per subject", Body: table}},
	})
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
