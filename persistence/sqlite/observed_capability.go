package sqlite

import (
	"context"

	"github.com/petal-labs/iris/core"
)

// Record upserts one observation. Later evidence wins regardless of
// direction (§4.7): an existing row for the same provider, model and feature
// is overwritten only when the new observed_at is not earlier than the
// stored one.
func (s *Store) Record(ctx context.Context, obs core.ObservedCapability) error {
	_, err := s.write.ExecContext(ctx, `
		INSERT INTO observed_capabilities (provider, model_id, feature, state, observed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider, model_id, feature) DO UPDATE SET
			state = excluded.state, observed_at = excluded.observed_at
		WHERE excluded.observed_at >= observed_capabilities.observed_at
	`, obs.Provider, string(obs.Model), string(obs.Feature), string(obs.State), formatTimestamp(obs.ObservedAt))
	return err
}

// ObservedCapabilities loads every observation recorded for provider,
// grouped by model then feature, ready for core.OverlayCapabilities.
func (s *Store) ObservedCapabilities(ctx context.Context, provider string) (map[core.ModelID]map[core.Feature]core.ObservedCapability, error) {
	rows, err := s.read.QueryContext(ctx, `
		SELECT model_id, feature, state, observed_at FROM observed_capabilities WHERE provider = ?
	`, provider)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[core.ModelID]map[core.Feature]core.ObservedCapability)
	for rows.Next() {
		var modelID, feature, state, observedAt string
		if err := rows.Scan(&modelID, &feature, &state, &observedAt); err != nil {
			return nil, err
		}
		obs := core.ObservedCapability{
			Provider:   provider,
			Model:      core.ModelID(modelID),
			Feature:    core.Feature(feature),
			State:      core.CapabilityState(state),
			ObservedAt: parseTimestamp(observedAt),
		}
		if result[obs.Model] == nil {
			result[obs.Model] = make(map[core.Feature]core.ObservedCapability)
		}
		result[obs.Model][obs.Feature] = obs
	}
	return result, rows.Err()
}
