// Package discovery builds test plans from YAML manifests found in a
// directory. Each manifest declares one or more plans whose test points are
// commands; the exit status of a command decides its outcome.
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deixis/microtap/internal/config"
	"github.com/deixis/microtap/internal/logger"
	"github.com/deixis/microtap/internal/runner"
	"github.com/deixis/microtap/tap"
	"github.com/pkg/errors"
)

// Options controls how manifests are found and how their commands run.
type Options struct {
	Pattern string // glob matched against file names; config.DefaultPattern when empty
	Codes   config.ExitCodes
	Runner  CommandRunner // a runner rooted at the scanned directory when nil
	Log     *logger.Logger
}

// Rejection records a manifest that could not be turned into plans.
type Rejection struct {
	File string
	Err  error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s: %v", r.File, r.Err)
}

// Result holds the plans built from a directory, in file name order, and
// the manifests that were skipped.
type Result struct {
	Plans    []*tap.Plan
	Rejected []Rejection
}

// Find scans dir (not recursively) for regular files whose name matches the
// pattern and builds their plans. A broken manifest does not stop
// discovery; it is reported in Result.Rejected.
//
// The returned plans capture ctx: cancelling it stops any command that is
// still running when the plans execute.
func Find(ctx context.Context, dir string, opts Options) (*Result, error) {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = config.DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.Wrapf(err, "pattern %q", pattern)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", dir)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", abs)
	}

	if opts.Runner == nil {
		opts.Runner = &runner.Runner{Root: abs, MaxOutput: config.DefaultMaxOutput}
	}

	res := &Result{}
	for _, e := range entries {
		name := e.Name()
		if ok, _ := filepath.Match(pattern, name); !ok {
			continue
		}
		path := filepath.Join(abs, name)
		// Follow symlinks; only regular files are manifests.
		if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
			continue
		}

		c := &collector{ctx: ctx, fileName: name, dir: abs, opts: opts}
		if err := c.load(path); err != nil {
			opts.Log.WithFields(map[string]any{"file": name}).Error(err, "manifest rejected")
			res.Rejected = append(res.Rejected, Rejection{File: name, Err: err})
			continue
		}
		res.Plans = append(res.Plans, c.plans...)
	}

	opts.Log.WithFields(map[string]any{
		"dir":      abs,
		"plans":    len(res.Plans),
		"rejected": len(res.Rejected),
	}).Debug("discovery finished")
	return res, nil
}

// collector carries the state of one manifest while its plans are built.
type collector struct {
	ctx      context.Context
	fileName string
	dir      string
	opts     Options
	plans    []*tap.Plan
}

func (c *collector) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading manifest")
	}
	m, err := parseManifest(data)
	if err != nil {
		return err
	}

	for _, ps := range m.Plans {
		plan := c.buildPlan(ps.Description, ps.Skip)
		for _, pt := range ps.Points {
			cwd := filepath.Join(c.dir, pt.Dir)
			plan.AddTestPoint(commandPoint(c.ctx, c.opts.Runner, c.opts.Codes, pt.Run, cwd), pt.Description)
		}
	}
	return nil
}

// buildPlan creates a plan bound to the manifest being loaded.
func (c *collector) buildPlan(description string, skipped bool) *tap.Plan {
	plan := tap.NewPlan(c.fileName, description, skipped)
	c.plans = append(c.plans, plan)
	return plan
}
