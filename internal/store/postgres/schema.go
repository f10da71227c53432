package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema runs the DDL in one implicit transaction; every statement is
// idempotent.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS rpgpanel_credentials (
    id       SMALLINT PRIMARY KEY CHECK (id = 1),
    token    TEXT NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rpgpanel_manifests (
    panel       TEXT NOT NULL,
    source_file TEXT NOT NULL,
    record_id   TEXT NOT NULL,
    source_hash TEXT NOT NULL,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uq_rpgpanel_manifest_source UNIQUE (panel, source_file)
);

CREATE INDEX IF NOT EXISTS idx_rpgpanel_manifests_panel ON rpgpanel_manifests (panel);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
