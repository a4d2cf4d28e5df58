package credstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/csvdesk/csvdesk/internal/client/migrations"
	"github.com/csvdesk/csvdesk/internal/common"
	"github.com/csvdesk/csvdesk/internal/filex"
	"github.com/csvdesk/csvdesk/internal/logging"
)

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the local client database and brings its schema up to
// date. The caller owns the returned handle.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if _, err := filex.EnsureParentDir(dsn); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	}

	return db, nil
}

// Open returns a Store backed by the database at dsn. If the database cannot
// be opened or migrated, the failure is logged and a no-op store is returned
// instead: the client then behaves as if no credentials were ever persisted.
func Open(ctx context.Context, dsn string, log logging.Logger) (Store, *sql.DB) {
	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		log.Warn(ctx, "credential storage unavailable, tokens will not persist", "dsn", dsn, "error", err)
		return NewNoopStore(), nil
	}
	return NewSQLiteStore(db), db
}
