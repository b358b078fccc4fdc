package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"simrun/internal/domain"
)

// SummaryTable renders one row per instance and a totals footer.
func SummaryTable(w io.Writer, report *domain.RunReport) {
	m := report.Meta
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s %s (%s, build %s, %s)", m.Mode, m.Target, m.Simulator, m.Build, m.Duration))

	t.AppendHeader(table.Row{"Bucket", "Test", "Seed", "Duration", "Errors", "Warnings", "Status", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Bucket", AutoMerge: true},
		{Name: "Seed", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Errors", Align: text.AlignRight},
		{Name: "Warnings", Align: text.AlignRight},
		{Name: "Error", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, r := range report.Results {
		t.AppendRow(table.Row{
			r.Bucket,
			r.Test,
			r.Seed,
			formatDuration(r.Duration),
			len(r.Outcome.Errors),
			len(r.Outcome.Warnings),
			statusString(r),
			r.Error,
		})
	}

	switch {
	case m.FailedInstances > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case m.WarnInstances > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		m.TotalInstances,
		"",
		fmt.Sprintf("%.1fs", m.DurationSeconds),
		fmt.Sprintf("%d passed", m.PassedInstances),
		fmt.Sprintf("%d warned", m.WarnInstances),
		fmt.Sprintf("%d failed", m.FailedInstances),
		"",
	})
	t.Render()
}

func statusString(r domain.InstanceResult) string {
	if r.Error != "" && r.Outcome.Status == domain.StatusPass {
		return string(domain.StatusFail)
	}
	return string(r.Outcome.Status)
}

// formatDuration formats a duration in seconds with one decimal place.
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
