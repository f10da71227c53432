package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"rpgpanel/internal/store"
)

func (c *Client) GetCredential(ctx context.Context) (*store.Credential, error) {
	var cred store.Credential
	err := c.pool.QueryRow(ctx,
		"SELECT token, username, saved_at FROM rpgpanel_credentials WHERE id = 1",
	).Scan(&cred.Token, &cred.Username, &cred.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("reading credential: %w", err)
	}
	return &cred, nil
}

func (c *Client) SaveCredential(ctx context.Context, cred store.Credential) error {
	if cred.SavedAt.IsZero() {
		cred.SavedAt = time.Now()
	}
	query := `
INSERT INTO rpgpanel_credentials (id, token, username, saved_at)
VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
    token = EXCLUDED.token,
    username = EXCLUDED.username,
    saved_at = EXCLUDED.saved_at
`
	if _, err := c.pool.Exec(ctx, query, cred.Token, cred.Username, cred.SavedAt); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

func (c *Client) ClearCredential(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, "DELETE FROM rpgpanel_credentials"); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}
