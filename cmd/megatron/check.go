package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/megatron/internal/script"
)

func newCheckCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Statically check a script and the scripts it runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			report, err := script.Check(cfg.ScriptDir, script.Resolve(cfg.ScriptDir, args[0]))
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report, cfg.Devices)
			if len(report.Problems) > 0 {
				return fmt.Errorf("%d problem(s) found", len(report.Problems))
			}
			return nil
		},
	}

	return cmd
}

func printReport(w io.Writer, report *script.Report, devices map[string]string) {
	fmt.Fprintf(w, "Scripts (%d):\n", len(report.Scripts))
	for _, s := range report.Scripts {
		fmt.Fprintf(w, "  %s\n", s)
	}

	fmt.Fprintf(w, "Logged signals (%d):\n", len(report.LoggedSignals))
	for _, name := range report.LoggedSignals {
		path, ok := devices[name]
		if !ok {
			path = "unmapped"
		}
		fmt.Fprintf(w, "  %s -> %s\n", name, path)
	}

	if len(report.Problems) > 0 {
		fmt.Fprintf(w, "Problems (%d):\n", len(report.Problems))
		for _, p := range report.Problems {
			fmt.Fprintf(w, "  %v\n", p)
		}
	}
}
