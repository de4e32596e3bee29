package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/microtap/internal/report"
	"github.com/deixis/microtap/tap"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type inspectParams struct {
	RunID string `json:"run_id,omitempty" jsonschema:"the run ID from a tap_run result. When empty, the most recent run IDs are listed."`
	File  string `json:"file,omitempty" jsonschema:"manifest file name (e.g. test_power.yaml). When empty, every plan of the run is summarised."`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return h.recentRuns()
	}

	record, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	if params.File == "" {
		return textResult(formatInspectOutput(record, "", record.Plans, ""))
	}

	plans := report.ByFile(record, params.File)
	section := report.Section(record.Transcript, params.File)
	bailed := record.BailedOut && record.BailOutFile == params.File
	if len(plans) == 0 && !bailed {
		return textResult(fmt.Sprintf("No plans from %s in run %s.", params.File, params.RunID))
	}
	return textResult(formatInspectOutput(record, params.File, plans, section))
}

// recentStore is implemented by stores that remember which runs they hold,
// such as report.LRUStore.
type recentStore interface {
	Recent() []string
}

func (h *handler) recentRuns() (*mcp.CallToolResult, any, error) {
	rs, ok := h.store.(recentStore)
	if !ok {
		return errorResult("run_id is required")
	}
	ids := rs.Recent()
	if len(ids) == 0 {
		return textResult("No runs yet. Use tap_run first.")
	}
	var b strings.Builder
	fmt.Fprintln(&b, "Recent runs (most recent first):")
	for _, id := range ids {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	return textResult(b.String())
}

func formatInspectOutput(record *report.SessionRecord, file string, plans []tap.PlanResult, section string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s (%s)\n", record.ID, record.Dir)
	if file != "" {
		fmt.Fprintf(&b, "File: %s\n", file)
	}
	fmt.Fprintln(&b)

	for _, p := range plans {
		name := p.FileName
		if p.Description != "" {
			name = fmt.Sprintf("%s %q", p.FileName, p.Description)
		}
		status := "ok"
		switch {
		case p.Skipped:
			status = "skipped"
		case !p.Success:
			status = "not ok"
		}
		c := p.Counts
		fmt.Fprintf(&b, "%s: %s (passed %d, skipped %d, todo %d, failed %d, errored %d)\n",
			name, status, c.Passed, c.Skipped, c.Incomplete, c.Failed, c.Errored)
	}

	if record.BailedOut && (file == "" || file == record.BailOutFile) {
		fmt.Fprintf(&b, "%s: bailed out", record.BailOutFile)
		if record.BailOutReason != "" {
			fmt.Fprintf(&b, " (%s)", record.BailOutReason)
		}
		fmt.Fprintln(&b)
	}

	if section != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "TAP:")
		for _, line := range strings.Split(strings.TrimRight(section, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	return b.String()
}
