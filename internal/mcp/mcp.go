// Package mcp provides the microtap MCP server, registering all tools
// and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"sync"
	"time"

	"github.com/deixis/microtap"
	"github.com/deixis/microtap/internal/config"
	"github.com/deixis/microtap/internal/logger"
	"github.com/deixis/microtap/internal/report"
	"github.com/deixis/microtap/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	mu     sync.RWMutex // guards engine, which client roots may repoint
	engine *workflow.Engine
	store  report.Store
	log    *logger.Logger
}

// engineSnapshot returns a copy of the engine that a single tool call can
// adjust freely.
func (h *handler) engineSnapshot() workflow.Engine {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return *h.engine
}

// NewServer creates an MCP server with all microtap tools registered. Runs
// are saved to store so tap_inspect can read them back.
func NewServer(cfg *config.Config, store report.Store, workspace string, log *logger.Logger) *mcp.Server {
	h := &handler{
		engine: &workflow.Engine{
			Config:    cfg,
			Workspace: workspace,
			Store:     store,
			Log:       log,
		},
		store: store,
		log:   log,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateWorkspaceFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "microtap", Version: microtap.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "tap_plans",
		Description: `List the test plans found in a directory without running them.

Shows each plan's manifest file, description, number of test points and whether
it is skipped, plus any manifest that could not be loaded and why.`,
	}, h.plansHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "tap_run",
		Description: `Run every test plan in a directory and return the TAP version 14 report.

Plans run in manifest file order. The result starts with the overall status and a
run ID; use the run ID with tap_inspect to drill into a single manifest.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "tap_inspect",
		Description: `Drill into a tap_run result.

Given the run_id and a manifest file name, returns the per-plan counts and the TAP
lines produced by that file's plans. Without a file, returns counts for every plan.
Without a run_id, lists the most recent run IDs.`,
	}, h.inspectHandler)

	return s
}

// updateWorkspaceFromRoots queries the client for MCP roots and points the
// engine at the first file root, reloading its configuration.
// This is called during session initialization, before any tool calls.
func (h *handler) updateWorkspaceFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil || len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}
	workspace := u.Path

	loaded, err := config.Load(workspace)
	if err != nil {
		h.log.WithFields(map[string]any{"workspace": workspace}).Error(err, "ignoring client root")
		return
	}

	h.mu.Lock()
	h.engine.Config = loaded.Config
	h.engine.Workspace = workspace
	h.mu.Unlock()
	h.log.WithFields(map[string]any{"workspace": workspace}).Debug("workspace set from client roots")
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
