package sqlite

import (
	"context"

	"github.com/google/uuid"

	"github.com/petal-labs/iris/persistence"
)

// AppendMetrics inserts one stream-metrics row.
func (s *Store) AppendMetrics(ctx context.Context, m persistence.MetricsRecord) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.write.ExecContext(ctx, `
		INSERT INTO metrics_records (
			id, provider, model, operation, attempt, fallback_used,
			emitted_count, time_to_first_token_ms, total_duration_ms, failure_class, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID, m.Provider, string(m.Model), m.Operation, m.Attempt, boolToInt(m.FallbackUsed),
		m.EmittedCount, m.TimeToFirstTokenMs, m.TotalDurationMs, string(m.FailureClass), formatTimestamp(m.CreatedAt),
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
