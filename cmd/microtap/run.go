package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/deixis/microtap/internal/report"
	"github.com/deixis/microtap/internal/runner"
	"github.com/deixis/microtap/internal/workflow"
)

type runOptions struct {
	noRootPlan bool
	output     string
	summary    bool
	timeout    time.Duration
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Run every test plan found in dir and write the TAP report",
		Long: `Run discovers plan manifests in dir (the working directory by default),
runs their test points in order and writes a TAP version 14 report to stdout.

The exit status is 1 when any plan failed or a test point bailed out.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) == 1 {
				dir = args[0]
			}
			return runRun(cmd, flags, opts, dir)
		},
	}

	cmd.Flags().BoolVar(&opts.noRootPlan, "no-root-plan", false, "Do not wrap several plans in a root plan")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print a summary table to stderr")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Bound each test point command (e.g. 30s), overriding .microtap")

	return cmd
}

func runRun(cmd *cobra.Command, flags *rootFlags, opts *runOptions, dir string) error {
	s, err := openSession(flags, dir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("opening report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	eng := newEngine(s, opts.timeout)
	if opts.noRootPlan {
		off := false
		eng.RootPlan = &off
	}

	result, err := eng.Run(ctx, s.dir, out)
	if err != nil {
		return err
	}

	for _, r := range result.Rejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "microtap: skipped %v\n", r)
	}
	if opts.summary {
		renderSummary(cmd.ErrOrStderr(), result)
	}

	if !result.Summary.Success() {
		return &exitError{code: 1}
	}
	return nil
}

// newEngine builds a workflow engine for the session. Runs are only kept
// when .microtap names a store directory.
func newEngine(s *session, timeoutOverride time.Duration) *workflow.Engine {
	timeout := s.cfg.Timeout()
	if timeoutOverride > 0 {
		timeout = timeoutOverride
	}

	eng := &workflow.Engine{
		Config:    s.cfg,
		Workspace: s.dir,
		Log:       s.log,
		Runner: &runner.Runner{
			Root:      s.dir,
			Timeout:   timeout,
			MaxOutput: s.cfg.MaxOutputBytes(),
		},
	}
	if s.cfg.StoreDir != "" {
		eng.Store = report.NewDiskStore(s.cfg.StoreDir)
	}
	return eng
}
