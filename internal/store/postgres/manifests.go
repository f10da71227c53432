package postgres

import (
	"context"
	"fmt"
	"time"

	"rpgpanel/internal/store"
)

func (c *Client) GetManifestHashes(ctx context.Context, panel string) (map[string]string, error) {
	rows, err := c.pool.Query(ctx,
		"SELECT source_file, source_hash FROM rpgpanel_manifests WHERE panel = $1", panel)
	if err != nil {
		return nil, fmt.Errorf("query manifest hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var sourceFile, sourceHash string
		if err := rows.Scan(&sourceFile, &sourceHash); err != nil {
			return nil, fmt.Errorf("scanning manifest hash: %w", err)
		}
		hashes[sourceFile] = sourceHash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating manifest hashes: %w", err)
	}
	return hashes, nil
}

func (c *Client) PutManifest(ctx context.Context, m store.Manifest) error {
	if m.AppliedAt.IsZero() {
		m.AppliedAt = time.Now()
	}
	query := `
INSERT INTO rpgpanel_manifests (panel, source_file, record_id, source_hash, applied_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (panel, source_file) DO UPDATE SET
    record_id = EXCLUDED.record_id,
    source_hash = EXCLUDED.source_hash,
    applied_at = EXCLUDED.applied_at
`
	if _, err := c.pool.Exec(ctx, query, m.Panel, m.SourceFile, m.RecordID, m.SourceHash, m.AppliedAt); err != nil {
		return fmt.Errorf("upserting manifest: %w", err)
	}
	return nil
}

func (c *Client) RemoveStaleManifests(ctx context.Context, panel string, currentSourceFiles []string) (int64, error) {
	if len(currentSourceFiles) == 0 {
		return 0, nil
	}
	tag, err := c.pool.Exec(ctx, `
DELETE FROM rpgpanel_manifests
WHERE panel = $1
  AND NOT (source_file = ANY($2))
`, panel, currentSourceFiles)
	if err != nil {
		return 0, fmt.Errorf("removing stale manifests: %w", err)
	}
	return tag.RowsAffected(), nil
}
