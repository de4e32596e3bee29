package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/deixis/microtap/internal/discovery"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type plansParams struct {
	Dir string `json:"dir,omitempty" jsonschema:"directory holding the plan manifests, absolute or relative to the workspace. Defaults to the workspace."`
}

func (h *handler) plansHandler(ctx context.Context, req *sdkmcp.CallToolRequest, params plansParams) (*sdkmcp.CallToolResult, any, error) {
	eng := h.engineSnapshot()
	dir, err := eng.ResolveDir(params.Dir)
	if err != nil {
		return errorResult(err.Error())
	}
	found, err := eng.Discover(ctx, dir)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to list plans in %s: %v", dir, err))
	}
	return textResult(formatPlans(dir, found))
}

func formatPlans(dir string, found *discovery.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Directory: %s\n", dir)
	if len(found.Plans) == 0 {
		fmt.Fprintln(&b, "No plans found.")
	} else {
		fmt.Fprintf(&b, "Plans (%d):\n", len(found.Plans))
	}
	for i, p := range found.Plans {
		fmt.Fprintf(&b, "  %d. %s", i+1, p.FileName())
		if p.Description() != "" {
			fmt.Fprintf(&b, " %q", p.Description())
		}
		switch {
		case p.Skipped():
			fmt.Fprintln(&b, ": skipped")
		case p.Len() == 1:
			fmt.Fprintln(&b, ": 1 test point")
		default:
			fmt.Fprintf(&b, ": %d test points\n", p.Len())
		}
	}

	if len(found.Rejected) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Rejected (%d):\n", len(found.Rejected))
		for _, r := range found.Rejected {
			fmt.Fprintf(&b, "  %s: %v\n", r.File, r.Err)
		}
	}
	return b.String()
}
