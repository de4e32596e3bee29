package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List the test plans found in dir without running them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) == 1 {
				dir = args[0]
			}
			return runList(cmd, flags, dir)
		},
	}
	return cmd
}

func runList(cmd *cobra.Command, flags *rootFlags, dir string) error {
	s, err := openSession(flags, dir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	found, err := newEngine(s, 0).Discover(cmd.Context(), s.dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(found.Plans) == 0 && len(found.Rejected) == 0 {
		fmt.Fprintf(out, "No plans found in %s.\n", s.dir)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "File", "Plan", "Points", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Points", Align: text.AlignRight},
	})
	for i, p := range found.Plans {
		status := "run"
		if p.Skipped() {
			status = "skip"
		}
		t.AppendRow(table.Row{i + 1, p.FileName(), p.Description(), p.Len(), status})
	}
	for _, r := range found.Rejected {
		t.AppendRow(table.Row{"-", r.File, r.Err.Error(), "-", "rejected"})
	}
	t.Render()
	return nil
}
