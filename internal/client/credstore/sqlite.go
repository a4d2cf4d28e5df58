package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/csvdesk/csvdesk/internal/client/models"
	"github.com/csvdesk/csvdesk/internal/dbx"
)

// SQLiteStore keeps the token pair in a key/value table of the local client
// database. Both tokens are written in one transaction, so a reader never
// observes a half-saved pair.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) set(ctx context.Context, tx dbx.DBTX, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get credentials[%s]: %w", key, err)
	}
	return value, nil
}

// Save persists the pair, replacing any previous one.
func (s *SQLiteStore) Save(ctx context.Context, pair models.TokenPair) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.set(ctx, tx, keyAccessToken, pair.AccessToken); err != nil {
			return err
		}
		return s.set(ctx, tx, keyRefreshToken, pair.RefreshToken)
	})
}

// Load returns the persisted pair, or nil when absent. A pair with either
// token missing is treated as absent so the both-or-neither invariant holds
// for readers even if the table was tampered with.
func (s *SQLiteStore) Load(ctx context.Context) (*models.TokenPair, error) {
	access, err := s.get(ctx, keyAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.get(ctx, keyRefreshToken)
	if err != nil {
		return nil, err
	}
	if access == "" || refresh == "" {
		return nil, nil
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Clear removes the persisted pair.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials`)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
