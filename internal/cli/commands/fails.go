package commands

import (
	"simrun/internal/config"
	"simrun/internal/storage"
	"simrun/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// FailsCommand handles the fails command
type FailsCommand struct {
	config  *config.Config
	storage *storage.JSONStorage
}

// NewFailsCommand creates a new FailsCommand
func NewFailsCommand(cfg *config.Config, st *storage.JSONStorage) *FailsCommand {
	return &FailsCommand{
		config:  cfg,
		storage: st,
	}
}

// Execute runs the command
func (fc *FailsCommand) Execute(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStorage(fc.config, fc.storage)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := st.Load()
	if err != nil {
		return err
	}
	if len(report.Failures()) == 0 {
		color.Green("✓ No failures in the last run (%s)", report.Meta.Target)
		return nil
	}

	return ui.NewErrorViewer(st).View(report)
}
