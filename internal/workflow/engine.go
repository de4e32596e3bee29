// Package workflow ties discovery, the TAP engine and the report store
// together. It is consumed by both the MCP server and the CLI commands.
package workflow

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/deixis/microtap/internal/config"
	"github.com/deixis/microtap/internal/discovery"
	"github.com/deixis/microtap/internal/logger"
	"github.com/deixis/microtap/internal/report"
	"github.com/deixis/microtap/internal/runner"
	"github.com/deixis/microtap/tap"
	"github.com/google/uuid"
)

// Engine holds shared dependencies for all workflow operations.
type Engine struct {
	Config    *config.Config
	Runner    discovery.CommandRunner // built per directory from Config when nil
	Workspace string                  // relative directories resolve against this
	Store     report.Store            // runs are not kept when nil
	Log       *logger.Logger

	// RootPlan overrides Config's root_plan setting when non-nil.
	RootPlan *bool
}

// RunResult is the outcome of one Run.
type RunResult struct {
	Record   *report.SessionRecord
	Summary  *tap.Summary
	Rejected []discovery.Rejection
}

// ResolveDir turns a directory argument into an absolute path. An empty
// argument means the workspace itself.
func (e *Engine) ResolveDir(dir string) (string, error) {
	switch {
	case dir == "":
		dir = e.Workspace
	case !filepath.IsAbs(dir) && e.Workspace != "":
		dir = filepath.Join(e.Workspace, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	return abs, nil
}

// Discover builds the plans found in dir without running them.
func (e *Engine) Discover(ctx context.Context, dir string) (*discovery.Result, error) {
	abs, err := e.ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	cfg := e.config()
	return discovery.Find(ctx, abs, discovery.Options{
		Pattern: cfg.ManifestPattern(),
		Codes:   cfg.ExitCodes,
		Runner:  e.runnerFor(abs),
		Log:     e.Log,
	})
}

// Run discovers the plans in dir, executes them and writes the TAP report
// to out. The transcript and per-plan results are saved to the store under
// a fresh run ID.
//
// A failing or bailed-out session is not an error; inspect
// RunResult.Summary. Errors mean discovery could not list dir, the report
// could not be written, or the record could not be saved.
func (e *Engine) Run(ctx context.Context, dir string, out io.Writer) (*RunResult, error) {
	abs, err := e.ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	found, err := e.Discover(ctx, abs)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := e.Log.WithFields(map[string]any{"run_id": id, "dir": abs})
	log.Info("session started")

	started := time.Now()
	tee := newTranscript(out)
	summary, err := tap.Execute(tee, found.Plans,
		tap.WithRootPlan(e.rootPlan()),
		tap.WithLogger(log.Zerolog()),
	)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}

	record := report.NewSessionRecord(id, abs, started, tee.String(), summary)
	for _, r := range found.Rejected {
		record.Rejected = append(record.Rejected, r.File)
	}
	if e.Store != nil {
		if err := e.Store.Save(record); err != nil {
			return nil, fmt.Errorf("saving run %s: %w", id, err)
		}
	}

	log.WithFields(map[string]any{
		"plans":      len(summary.Plans),
		"success":    summary.Success(),
		"bailed_out": summary.BailedOut,
		"elapsed":    time.Since(started).String(),
	}).Info("session finished")

	return &RunResult{Record: record, Summary: summary, Rejected: found.Rejected}, nil
}

func (e *Engine) config() *config.Config {
	if e.Config == nil {
		return &config.Config{}
	}
	return e.Config
}

func (e *Engine) rootPlan() bool {
	if e.RootPlan != nil {
		return *e.RootPlan
	}
	return e.config().RootPlanEnabled()
}

func (e *Engine) runnerFor(dir string) discovery.CommandRunner {
	if e.Runner != nil {
		return e.Runner
	}
	cfg := e.config()
	return &runner.Runner{
		Root:      dir,
		Timeout:   cfg.Timeout(),
		MaxOutput: cfg.MaxOutputBytes(),
	}
}
