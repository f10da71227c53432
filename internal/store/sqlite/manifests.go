package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rpgpanel/internal/store"
)

func (c *Client) GetManifestHashes(ctx context.Context, panel string) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT source_file, source_hash FROM manifests WHERE panel = ?", panel)
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
		m.AppliedAt = c.now()
	}
	query := `
	INSERT INTO manifests (panel, source_file, record_id, source_hash, applied_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (panel, source_file) DO UPDATE SET
		record_id = excluded.record_id,
		source_hash = excluded.source_hash,
		applied_at = excluded.applied_at
	`
	_, err := c.db.ExecContext(ctx, query,
		m.Panel,
		m.SourceFile,
		m.RecordID,
		m.SourceHash,
		m.AppliedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting manifest: %w", err)
	}
	return nil
}

// RemoveStaleManifests forgets manifests of panel whose files are gone.
// An empty file list removes nothing.
func (c *Client) RemoveStaleManifests(ctx context.Context, panel string, currentSourceFiles []string) (int64, error) {
	if len(currentSourceFiles) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(currentSourceFiles))
	args := make([]any, len(currentSourceFiles)+1)
	args[0] = panel
	for i, f := range currentSourceFiles {
		placeholders[i] = "?"
		args[i+1] = f
	}

	query := fmt.Sprintf(`
	DELETE FROM manifests
	WHERE panel = ?
	  AND source_file NOT IN (%s)
	`, strings.Join(placeholders, ", "))

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("removing stale manifests: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected, nil
}
