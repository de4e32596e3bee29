package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/deixis/microtap/internal/workflow"
	"github.com/deixis/microtap/tap"
)

// renderSummary writes one row per plan and a total footer.
func renderSummary(w io.Writer, result *workflow.RunResult) {
	s := result.Summary

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("TAP run %s", result.Record.ID))
	t.AppendHeader(table.Row{"File", "Plan", "Passed", "Skipped", "TODO", "Failed", "Errored", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "File", AutoMerge: true},
		{Name: "Plan", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "TODO", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Errored", Align: text.AlignRight},
	})

	var total tap.Counts
	for _, p := range s.Plans {
		c := p.Counts
		total.Passed += c.Passed
		total.Skipped += c.Skipped
		total.Incomplete += c.Incomplete
		total.Failed += c.Failed
		total.Errored += c.Errored
		t.AppendRow(table.Row{p.FileName, p.Description, c.Passed, c.Skipped, c.Incomplete, c.Failed, c.Errored, planStatus(p)})
	}
	if s.BailedOut {
		t.AppendRow(table.Row{s.BailOutFile, s.BailOutReason, "-", "-", "-", "-", "-", "BAIL OUT"})
	}

	status := "PASS"
	switch {
	case s.BailedOut:
		status = "BAIL OUT"
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case !s.Success():
		status = "FAIL"
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.AppendFooter(table.Row{"TOTAL", fmt.Sprintf("%d plans", len(s.Plans)), total.Passed, total.Skipped, total.Incomplete, total.Failed, total.Errored, status})
	t.Render()
}

func planStatus(p tap.PlanResult) string {
	switch {
	case p.Skipped:
		return "SKIP"
	case p.Success:
		return "PASS"
	default:
		return "FAIL"
	}
}
