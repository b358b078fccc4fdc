package commands

import (
	"errors"
	"fmt"
	"os"

	"simrun/internal/config"
	"simrun/internal/ctxlog"
	"simrun/internal/domain"
	"simrun/internal/execution"
	"simrun/internal/orchestrator"
	"simrun/internal/storage"
	"simrun/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	storage   *storage.JSONStorage
	formatter *ui.Formatter
	options   []orchestrator.Option
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, st *storage.JSONStorage, formatter *ui.Formatter, opts ...orchestrator.Option) *RunCommand {
	return &RunCommand{
		config:    cfg,
		storage:   st,
		formatter: formatter,
		options:   opts,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := rc.config.Flags

	opts := append([]orchestrator.Option(nil), rc.options...)
	if !flags.NoProgress {
		opts = append(opts, orchestrator.WithProgress(func(total int) execution.Progress {
			return ui.NewProgressBar(total)
		}))
	}
	session, err := orchestrator.NewSession(ctx, rc.config, opts...)
	if err != nil {
		return err
	}

	target, mode := flags.Test, orchestrator.ModeTest
	if flags.Group != "" {
		target, mode = flags.Group, orchestrator.ModeGroup
	}
	rc.formatter.PrintBanner(fmt.Sprintf("%s %s on %s", mode, target, session.Profile().Name()))

	report, runErr := session.Run(ctx)
	if state, kind := session.State(); state == orchestrator.StateFailed {
		ctxlog.FromContext(ctx).Debug("Run failed", "kind", kind, "error", runErr)
	}

	if runErr != nil {
		// keep what ran before an interrupt
		if report != nil && len(report.Results) > 0 && errors.Is(runErr, domain.ErrInterrupted) {
			if err := publish(ctx, rc.config, rc.storage, rc.formatter, report); err != nil && !errors.Is(err, ErrFailures) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
		return runErr
	}

	if len(report.Results) == 0 {
		color.Green("✓ Compile finished")
		return nil
	}
	return publish(ctx, rc.config, rc.storage, rc.formatter, report)
}
