package commands

import (
	"simrun/internal/config"
	"simrun/internal/orchestrator"
	"simrun/internal/storage"
	"simrun/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CheckCommand handles the check command
type CheckCommand struct {
	config    *config.Config
	storage   *storage.JSONStorage
	formatter *ui.Formatter
}

// NewCheckCommand creates a new CheckCommand
func NewCheckCommand(cfg *config.Config, st *storage.JSONStorage, formatter *ui.Formatter) *CheckCommand {
	return &CheckCommand{
		config:    cfg,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs the command
func (cc *CheckCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	root := cc.config.WorkDir
	if len(args) > 0 {
		root = args[0]
	}

	session, err := orchestrator.NewSession(ctx, cc.config)
	if err != nil {
		return err
	}
	report, err := session.Check(ctx, root)
	if err != nil {
		return err
	}
	if len(report.Results) == 0 {
		color.Yellow("No simulation logs found under %s", root)
		return nil
	}
	return publish(ctx, cc.config, cc.storage, cc.formatter, report)
}
