package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rpgpanel/internal/store"
)

func (c *Client) GetCredential(ctx context.Context) (*store.Credential, error) {
	var (
		cred    store.Credential
		savedAt string
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT token, username, saved_at FROM credentials WHERE id = 1",
	).Scan(&cred.Token, &cred.Username, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("reading credential: %w", err)
	}
	cred.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
	return &cred, nil
}

func (c *Client) SaveCredential(ctx context.Context, cred store.Credential) error {
	if cred.SavedAt.IsZero() {
		cred.SavedAt = c.now()
	}
	query := `
	INSERT INTO credentials (id, token, username, saved_at)
	VALUES (1, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		token = excluded.token,
		username = excluded.username,
		saved_at = excluded.saved_at
	`
	if _, err := c.db.ExecContext(ctx, query, cred.Token, cred.Username, cred.SavedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

func (c *Client) ClearCredential(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM credentials"); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}
