package commands

import (
	"context"
	"fmt"
	"os"

	"simrun/internal/config"
	"simrun/internal/ctxlog"
	"simrun/internal/domain"
	"simrun/internal/storage"
	"simrun/internal/ui"
)

// openStorage returns the JSON report store, followed by the MySQL store
// when SIMRUN_DB_DSN is set. The returned func closes the database.
func openStorage(cfg *config.Config, js *storage.JSONStorage) (storage.Storage, func(), error) {
	if cfg.DBDSN == "" {
		return js, func() {}, nil
	}
	db, err := storage.OpenMySQL(cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open results database: %w", err)
	}
	return storage.Multi{js, db}, func() { _ = db.Close() }, nil
}

// publish prints the summary of a finished report, saves it and opens the
// fails viewer when asked to. It returns ErrFailures when instances failed.
func publish(ctx context.Context, cfg *config.Config, js *storage.JSONStorage, formatter *ui.Formatter, report *domain.RunReport) error {
	logger := ctxlog.FromContext(ctx)

	fmt.Println()
	ui.SummaryTable(os.Stdout, report)
	formatter.PrintResult(report)

	st, closeStore, err := openStorage(cfg, js)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := st.Save(report); err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}
	logger.Debug("Saved run report", "run_id", report.Meta.RunID, "path", js.Path())
	formatter.PrintReportPath(js.Path())

	if report.Meta.FailedInstances == 0 {
		return nil
	}
	if cfg.Flags.OpenFails {
		if err := ui.NewErrorViewer(st).View(report); err != nil {
			return err
		}
	}
	return ErrFailures
}
