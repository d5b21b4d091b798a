package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists session state in a single key-value table:
//
//	CREATE TABLE checkout_sessions (
//	    account_id TEXT NOT NULL,
//	    key        TEXT NOT NULL,
//	    value      TEXT NOT NULL,
//	    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
//	    PRIMARY KEY (account_id, key)
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, accountID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM checkout_sessions WHERE account_id = $1 AND key = $2`,
		accountID, key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session get: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, accountID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkout_sessions (account_id, key, value, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (account_id, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		accountID, key, value,
	)
	if err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, accountID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM checkout_sessions WHERE account_id = $1 AND key = $2`,
		accountID, key,
	)
	if err != nil {
		return fmt.Errorf("session remove: %w", err)
	}
	return nil
}
