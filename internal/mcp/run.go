package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/microtap/internal/workflow"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type runParams struct {
	Dir      string `json:"dir,omitempty" jsonschema:"directory holding the plan manifests, absolute or relative to the workspace. Defaults to the workspace."`
	RootPlan *bool  `json:"root_plan,omitempty" jsonschema:"wrap several plans in a synthetic root plan with one roll-up line per plan. Defaults to the configured value (true)."`
}

func (h *handler) runHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params runParams) (*sdkmcp.CallToolResult, any, error) {
	// A root_plan override applies to this call only.
	eng := h.engineSnapshot()
	if params.RootPlan != nil {
		eng.RootPlan = params.RootPlan
	}

	result, err := eng.Run(ctx, params.Dir, nil)
	if err != nil {
		return errorResult(fmt.Sprintf("run failed: %v", err))
	}
	return textResult(formatRun(result))
}

func formatRun(result *workflow.RunResult) string {
	var b strings.Builder

	switch s := result.Summary; {
	case s.BailedOut:
		fmt.Fprintln(&b, "Status: BAILED OUT")
	case s.Success():
		fmt.Fprintln(&b, "Status: PASS")
	default:
		fmt.Fprintln(&b, "Status: FAIL")
	}
	fmt.Fprintf(&b, "Run: %s\n", result.Record.ID)

	if len(result.Rejected) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Rejected manifests:")
		for _, r := range result.Rejected {
			fmt.Fprintf(&b, "  %s: %v\n", r.File, r.Err)
		}
	}

	fmt.Fprintln(&b)
	b.WriteString(result.Record.Transcript)
	return b.String()
}
