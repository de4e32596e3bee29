package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deixis/microtap/internal/config"
	"github.com/deixis/microtap/internal/logger"
)

type rootFlags struct {
	logLevel string
	human    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "microtap",
		Short:         "Run test plans and report them in TAP version 14",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error (default from .microtap, else info)")
	cmd.PersistentFlags().BoolVar(&flags.human, "human", false, "Write logs for humans instead of JSON")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newMCPCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// session is what every command needs before it can do anything: the
// resolved directory, its configuration and a logger.
type session struct {
	dir string
	cfg *config.Config
	log *logger.Logger
}

// openSession resolves dir (the working directory when empty), loads the
// configuration that applies to it and builds the logger. Logs go to
// stderr.
func openSession(flags *rootFlags, dir string, stderr io.Writer) (*session, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	loaded, err := config.Load(abs)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	level := flags.logLevel
	if level == "" {
		level = cfg.Log.Level
	}
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: flags.human || cfg.Log.Human,
		Writer:        stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &session{dir: abs, cfg: cfg, log: log}, nil
}
