package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/petal-labs/iris/core"
)

// SaveSnapshot replaces provider's stored model list atomically (single
// UPSERT row per provider — §4.8's "atomic replace").
func (s *Store) SaveSnapshot(ctx context.Context, provider string, models []core.ModelInfo, fetchedAt time.Time) error {
	payload, err := json.Marshal(models)
	if err != nil {
		return err
	}
	_, err = s.write.ExecContext(ctx, `
		INSERT INTO model_snapshots (provider, models_json, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET models_json = excluded.models_json, fetched_at = excluded.fetched_at
	`, provider, string(payload), formatTimestamp(fetchedAt))
	return err
}

// LoadSnapshot returns the most recently saved model list for provider.
// Absence is reported as ok=false, never as an error (§4.8).
func (s *Store) LoadSnapshot(ctx context.Context, provider string) ([]core.ModelInfo, bool, error) {
	var payload string
	err := s.read.QueryRowContext(ctx,
		`SELECT models_json FROM model_snapshots WHERE provider = ?`, provider,
	).Scan(&payload)
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var models []core.ModelInfo
	if err := json.Unmarshal([]byte(payload), &models); err != nil {
		return nil, false, err
	}
	return models, true, nil
}
