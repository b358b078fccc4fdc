package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// DatabaseManager manages the result database
type DatabaseManager struct {
	dsn string
}

// NewDatabaseManager creates a new DatabaseManager for a go-sql-driver DSN
// such as "user:pass@tcp(127.0.0.1:3306)/simrun?parseTime=true".
func NewDatabaseManager(dsn string) *DatabaseManager {
	return &DatabaseManager{dsn: dsn}
}

// splitDSN returns the DSN of the server without a database, and the
// database name.
func splitDSN(dsn string) (string, string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", "", fmt.Errorf("invalid database DSN: %w", err)
	}
	name := cfg.DBName
	if name == "" {
		return "", "", fmt.Errorf("database DSN names no database")
	}
	cfg.DBName = ""
	return cfg.FormatDSN(), name, nil
}

// EnsureDatabase creates the database named by the DSN if it does not
// exist and reports whether it did.
func (dm *DatabaseManager) EnsureDatabase(ctx context.Context) (bool, error) {
	server, name, err := splitDSN(dm.dsn)
	if err != nil {
		return false, err
	}

	// Connect to MySQL server (without specifying database)
	db, err := sql.Open("mysql", server)
	if err != nil {
		return false, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return false, fmt.Errorf("failed to ping database server: %w", err)
	}

	exists, err := dm.databaseExists(ctx, db, name)
	if err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		return false, nil
	}
	if err := dm.createDatabase(ctx, db, name); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return true, nil
}

// Open connects to the database named by the DSN.
func (dm *DatabaseManager) Open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("mysql", dm.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (dm *DatabaseManager) databaseExists(ctx context.Context, db *sql.DB, dbName string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, dbName).Scan(&exists)
	return exists, err
}

func (dm *DatabaseManager) createDatabase(ctx context.Context, db *sql.DB, dbName string) error {
	if !isValidDatabaseName(dbName) {
		return fmt.Errorf("invalid database name: %s", dbName)
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName))
	return err
}

// isValidDatabaseName accepts unquoted MySQL identifiers of up to 64
// characters.
func isValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, c := range name {
		ok := c == '_' || c == '$' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !ok {
			return false
		}
	}
	return !strings.HasPrefix(name, "$")
}
