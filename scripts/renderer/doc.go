// Package renderer loads embedded markdown templates under scripts/renderer/templates/
// and renders them with sprig functions.
//
// The dashboard header widget and the load/metrics reports are written as
// `.tmpl` files rather than Go string literals so their layout can be read
// and reviewed on its own.
//
// Example:
//
//	header, err := renderer.Render(renderer.TplDashboardHeader, renderer.DashboardHeaderData{
//	    Title:    "Autoscaling demo",
//	    Subjects: subjects,
//	})
package renderer
