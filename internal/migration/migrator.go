// Package migration creates and upgrades the MySQL schema of the run result
// store.
package migration

import "context"

// Migrator runs database migrations
type Migrator interface {
	Run(ctx context.Context, fresh bool) error
}
