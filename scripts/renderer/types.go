package renderer

import "time"

// TemplateName represents a known template filename.
type TemplateName string

// Constants for known template filenames.
const (
	TplDashboardHeader TemplateName = "dashboard_header.md.tmpl"
	TplReport          TemplateName = "report.md.tmpl"
)

// DashboardSubject is one scaling strategy in the dashboard header.
type DashboardSubject struct {
	Name string
	// Metric is the tracked statistic, "average" or "maximum".
	Metric        string
	Target        float64
	ScaleIn       float64
	MinCapacity   int
	MaxCapacity   int
	WorkTime      time.Duration
	ColdStartTime time.Duration
}

// DashboardHeaderData holds the data required by the TplDashboardHeader template.
type DashboardHeaderData struct {
	Title    string
	Subjects []DashboardSubject
}

// ReportSection is a heading followed by a pre-rendered markdown body.
type ReportSection struct {
	Heading string
	Body    string
}

// ReportData holds the data required by the TplReport template.
type ReportData struct {
	Title       string
	GeneratedAt string
	Notes       []string
	Sections    []ReportSection
}
