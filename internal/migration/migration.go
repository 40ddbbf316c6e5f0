package migration

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"surveyml/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTable reports whether name can be used unquoted as a table name
func ValidTable(name string) bool {
	return identifier.MatchString(name)
}

// MigrationRunner creates the survey response table. The DDL is limited to types both
// PostgreSQL and SQLite accept.
type MigrationRunner struct {
	version string
	table   string
}

// NewRunner creates a new migration runner for the given response table
func NewRunner(table string) *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		table:   table,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if !ValidTable(r.table) {
		return errors.ConfigInvalid(fmt.Sprintf("invalid survey table name %q", r.table))
	}
	if err := r.createResponsesTable(ctx, db); err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to create %s table", r.table), err)
	}
	return nil
}

func (r *MigrationRunner) createResponsesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			recommend_score VARCHAR(64),
			overall_satisfaction VARCHAR(64),
			long_term_intention VARCHAR(64),
			sense_of_contribution VARCHAR(64),
			comment TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, r.table))
	return err
}
