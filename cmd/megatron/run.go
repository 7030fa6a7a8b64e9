package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/megatron/internal/app"
	"github.com/alexisbeaulieu97/megatron/internal/config"
	"github.com/alexisbeaulieu97/megatron/internal/tui"
)

type runOptions struct {
	Script         string
	NoSync         bool
	NonInteractive bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Script = args[0]
			if !opts.NonInteractive {
				opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))
			}

			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSession(ctx, root, cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.NoSync, "no-sync", false, "Skip syncing the script directory from git")
	cmd.Flags().BoolVar(&opts.NonInteractive, "plain", false, "Disable the dashboard and print logs only")

	return cmd
}

func runSession(ctx context.Context, root *rootFlags, cfg *config.Config, opts runOptions, out io.Writer) error {
	if opts.NonInteractive {
		log, err := newLogger(root, out)
		if err != nil {
			return err
		}
		if !opts.NoSync {
			if err := app.SyncScripts(ctx, cfg, log); err != nil {
				return err
			}
		}

		rt, err := app.Build(app.Options{Config: cfg, Logger: log})
		if err != nil {
			return err
		}
		summary, err := rt.Run(ctx, opts.Script)
		fmt.Fprintf(out, "session %s: %d steps, %d diversions, %d reports\n",
			summary.State, summary.Steps, summary.Diversions, summary.Reports)
		return err
	}

	return runDashboard(ctx, root, cfg, opts)
}

// runDashboard runs the session behind the Bubbletea dashboard. Log output
// goes to a file next to the data log so it does not tear the screen.
func runDashboard(ctx context.Context, root *rootFlags, cfg *config.Config, opts runOptions) error {
	if err := os.MkdirAll(cfg.Logging.Dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.Logging.Dir, "megatron.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer logFile.Close()

	log, err := newLogger(root, logFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !opts.NoSync {
		if err := app.SyncScripts(ctx, cfg, log); err != nil {
			return err
		}
	}

	program := tea.NewProgram(tui.NewModel(cfg.Name, cancel))
	rt, err := app.Build(app.Options{Config: cfg, Logger: log, Observer: tui.Observer(program)})
	if err != nil {
		return err
	}

	go func() {
		summary, runErr := rt.Run(ctx, opts.Script)
		program.Send(tui.DoneMsg{Summary: summary, Err: runErr})
	}()

	final, err := program.Run()
	if err != nil {
		cancel()
		return err
	}

	m, ok := final.(tui.Model)
	if !ok {
		return nil
	}
	fmt.Println(m.View())
	return m.Err()
}
