package sqlite

import (
	"context"

	"github.com/google/uuid"

	"github.com/petal-labs/iris/persistence"
)

// AppendChatLog inserts one chat-log row. Token fields are stored as
// nullable integers since any of the three may be unreported by a provider.
func (s *Store) AppendChatLog(ctx context.Context, log persistence.ChatLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	_, err := s.write.ExecContext(ctx, `
		INSERT INTO chat_logs (
			id, provider, model, operation, correlation_id, request_id, response_id,
			finish_reason, prompt_tokens, completion_tokens, total_tokens, error_code, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID, log.Provider, string(log.Model), log.Operation, log.CorrelationID, log.RequestID, log.ResponseID,
		string(log.FinishReason), log.Tokens.Prompt, log.Tokens.Completion, log.Tokens.Total,
		string(log.ErrorCode), formatTimestamp(log.CreatedAt),
	)
	return err
}
