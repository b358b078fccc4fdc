package commands

import (
	"errors"

	"simrun/internal/config"
	"simrun/internal/migration"

	"github.com/spf13/cobra"
)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	config   *config.Config
	migrator migration.Migrator
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(cfg *config.Config, migrator migration.Migrator) *MigrateCommand {
	return &MigrateCommand{
		config:   cfg,
		migrator: migrator,
	}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	if mc.config.DBDSN == "" {
		return errors.New("SIMRUN_DB_DSN is not set")
	}
	return mc.migrator.Run(cmd.Context(), mc.config.Flags.Fresh)
}
