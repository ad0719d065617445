//go:generate go test -run . -update
package renderer_test

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcdemo/autoscaling/scripts/renderer"
)

func TestDashboardHeader_Golden(t *testing.T) {
	// goldie automatically detects the -update flag.
	g := goldie.New(t)

	data := renderer.DashboardHeaderData{
		Title: "Autoscaling demo",
		Subjects: []renderer.DashboardSubject{
			{
				Name: "Average", Metric: "average", Target: 0.8, ScaleIn: 0.8 * 0.9,
				MinCapacity: 1, MaxCapacity: 10,
				WorkTime: 20 * time.Millisecond, ColdStartTime: 200 * time.Millisecond,
			},
			{
				Name: "Maximum", Metric: "Maximum", Target: 0.8, ScaleIn: 0.8 * 0.9,
				MinCapacity: 1, MaxCapacity: 10,
				WorkTime: 10 * time.Millisecond, ColdStartTime: 500 * time.Millisecond,
			},
		},
	}

	got, err := renderer.Render(renderer.TplDashboardHeader, data)
	require.NoError(t, err, "Failed to render %s", renderer.TplDashboardHeader)
	g.Assert(t, t.Name(), []byte(got))
}

func TestReport_Golden(t *testing.T) {
	g := goldie.New(t)

	data := renderer.ReportData{
		Title:       "Load test",
		GeneratedAt: "2026-10-17T12:00:00Z",
		Notes:       []string{"plan: default"},
		Sections: []renderer.ReportSection{
			{Heading: "Results", Body: "| Target | Requests |\n|---|---|\n| Average | 10 |\n"},
		},
	}

	got, err := renderer.Render(renderer.TplReport, data)
	require.NoError(t, err, "Failed to render %s", renderer.TplReport)
	g.Assert(t, t.Name(), []byte(got))
}

func TestReport_OptionalParts(t *testing.T) {
	got, err := renderer.Render(renderer.TplReport, renderer.ReportData{Title: "Metrics"})
	require.NoError(t, err)
	assert.Equal(t, "# Metrics\n", got)
}

func TestAllTemplatesCanRender(t *testing.T) {
	tests := map[renderer.TemplateName]any{
		renderer.TplDashboardHeader: renderer.DashboardHeaderData{Title: "x"},
		renderer.TplReport:          renderer.ReportData{Title: "x"},
	}
	for name, data := range tests {
		t.Run(string(name), func(t *testing.T) {
			_, err := renderer.Render(name, data)
			require.NoError(t, err, "Template %q failed to parse/render with basic data", name)
			// second call is served from the cache
			_, err = renderer.Render(name, data)
			require.NoError(t, err)
		})
	}
}

func TestRendererErrors(t *testing.T) {
	tests := []struct {
		name       string
		tplName    renderer.TemplateName
		data       any
		wantErrMsg string
	}{
		{
			name:       "Template not found",
			tplName:    "non_existent_template.tmpl",
			wantErrMsg: "parsing template",
		},
		{
			name:       "Missing required data field",
			tplName:    renderer.TplDashboardHeader,
			data:       map[string]any{},
			wantErrMsg: "missing required field '.Title'",
		},
		{
			name:       "Incorrect data type",
			tplName:    renderer.TplDashboardHeader,
			data:       map[string]any{"Title": "x", "Subjects": struct{}{}},
			wantErrMsg: "executing template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderer.Render(tt.tplName, tt.data)
			require.Error(t, err, "Expected an error but got none")
			assert.Contains(t, err.Error(), tt.wantErrMsg, "Error message mismatch")
		})
	}

	require.Panics(t, func() { renderer.MustRender(renderer.TplReport, map[string]any{}) })
}
