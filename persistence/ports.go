// Package persistence defines the repository ports of §4.6: the core
// streaming/chat machinery depends only on these narrow interfaces, never
// on a concrete storage engine. persistence/sqlite provides the reference
// adapter.
package persistence

import (
	"context"
	"time"

	"github.com/petal-labs/iris/core"
)

// ChatLog is one completed chat call's metadata, appended by the Wrap
// recorder after every Chat/StreamChat whenever a ChatLogRepository is
// configured; no preference is consulted. It intentionally carries no
// prompt or response text — only what a ChatResponse's ProviderMetadata
// already exposes, plus the terminal outcome.
type ChatLog struct {
	ID            string
	Provider      string
	Model         core.ModelID
	Operation     string
	CorrelationID string
	RequestID     string
	ResponseID    string
	FinishReason  core.FinishReason
	Tokens        core.TokenUsage
	ErrorCode     core.ErrorCode // empty on success
	CreatedAt     time.Time
}

// MetricsRecord is the persisted form of a core.StreamMetricsPayload.
type MetricsRecord struct {
	ID                 string
	Provider           string
	Model              core.ModelID
	Operation          string
	Attempt            int
	FallbackUsed       bool
	EmittedCount       int
	TimeToFirstTokenMs *int
	TotalDurationMs    int
	FailureClass       core.ErrorCode
	CreatedAt          time.Time
}

// ModelRegistryRepository persists model-list snapshots per provider.
type ModelRegistryRepository interface {
	SaveSnapshot(ctx context.Context, provider string, models []core.ModelInfo, fetchedAt time.Time) error
	LoadSnapshot(ctx context.Context, provider string) ([]core.ModelInfo, bool, error)
}

// ObservedCapabilityStore persists and reads back observed-capability
// evidence (§4.7).
type ObservedCapabilityStore interface {
	Record(ctx context.Context, obs core.ObservedCapability) error
	ObservedCapabilities(ctx context.Context, provider string) (map[core.ModelID]map[core.Feature]core.ObservedCapability, error)
}

// ChatLogRepository appends completed-call metadata.
type ChatLogRepository interface {
	AppendChatLog(ctx context.Context, log ChatLog) error
}

// MetricsRepository appends stream-metrics records.
type MetricsRepository interface {
	AppendMetrics(ctx context.Context, m MetricsRecord) error
}

// PrefsRepository is a small typed key-value store for process preferences
// (e.g. "chat_log_enabled").
type PrefsRepository interface {
	GetBool(ctx context.Context, key string, fallback bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

// KeyVaultRepository persists provider API keys. The reference adapter
// stores them encrypted at rest; the port itself only speaks in plaintext
// strings — encryption is the adapter's policy, not part of the contract.
type KeyVaultRepository interface {
	GetKey(ctx context.Context, provider string) (string, bool, error)
	SetKey(ctx context.Context, provider, value string) error
	DeleteKey(ctx context.Context, provider string) error
	ListProviders(ctx context.Context) ([]string, error)
}
