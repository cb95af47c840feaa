// Package registry implements the model registry: live-fetch with
// cached-snapshot fallback, overlaid with observed-capability evidence
// (§4.8, §4.7).
package registry

import (
	"context"
	"time"

	"github.com/petal-labs/iris/core"
)

// Fetcher retrieves the current model list directly from a provider (an
// HTTP call, or for local providers a validated local-process invocation).
// Registered once per provider name at composition-root time.
type Fetcher func(ctx context.Context) ([]core.ModelInfo, error)

// SnapshotStore persists the latest known-good model list per provider.
// persistence/sqlite.Store satisfies this structurally.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, provider string, models []core.ModelInfo, fetchedAt time.Time) error
	LoadSnapshot(ctx context.Context, provider string) ([]core.ModelInfo, bool, error)
}

// ObservedStore is the read side of observed-capability evidence needed to
// overlay onto a snapshot. persistence/sqlite.Store satisfies it
// structurally.
type ObservedStore interface {
	ObservedCapabilities(ctx context.Context, provider string) (map[core.ModelID]map[core.Feature]core.ObservedCapability, error)
}

// Registry is the model registry described in §4.8.
type Registry struct {
	fetchers  map[string]Fetcher
	snapshots SnapshotStore
	observed  ObservedStore
	logger    core.Logger
}

// New builds a Registry. snapshots and observed may be nil, in which case
// List degrades to empty-snapshot / no-overlay behavior rather than erroring
// — useful for tests and for callers who haven't wired persistence yet.
func New(snapshots SnapshotStore, observed ObservedStore, logger core.Logger) *Registry {
	if logger == nil {
		logger = core.NoopLogger{}
	}
	return &Registry{
		fetchers:  make(map[string]Fetcher),
		snapshots: snapshots,
		observed:  observed,
		logger:    logger,
	}
}

// RegisterFetcher wires provider's live-fetch function. Safe to call only
// during composition-root setup; Registry itself is not guarded against
// concurrent RegisterFetcher/List races.
func (r *Registry) RegisterFetcher(provider string, fetch Fetcher) {
	r.fetchers[provider] = fetch
}

// List implements the four-step algorithm in §4.8: optional live refresh
// with snapshot persistence on success (never on failure — the prior
// snapshot survives a failed refresh), snapshot load (absent is empty, not
// an error), observed-capability overlay, return.
func (r *Registry) List(ctx context.Context, provider string, refresh bool) ([]core.ModelInfo, error) {
	if refresh {
		if fetch, ok := r.fetchers[provider]; ok {
			models, err := fetch(ctx)
			if err != nil {
				code := core.Classify(0, err)
				r.logger.Warn("registry_refresh_failed", map[string]any{
					"provider":      provider,
					"failure_class": string(code),
					"fallback_used": r.snapshots != nil,
				})
			} else if r.snapshots != nil {
				if err := r.snapshots.SaveSnapshot(ctx, provider, models, time.Now()); err != nil {
					r.logger.Warn("registry_snapshot_save_failed", map[string]any{
						"provider": provider, "error": err.Error(),
					})
				}
			}
		}
	}

	var models []core.ModelInfo
	if r.snapshots != nil {
		snap, ok, err := r.snapshots.LoadSnapshot(ctx, provider)
		if err != nil {
			return nil, err
		}
		if ok {
			models = snap
		}
	}

	if r.observed == nil || len(models) == 0 {
		return models, nil
	}

	byModel, err := r.observed.ObservedCapabilities(ctx, provider)
	if err != nil {
		return nil, err
	}
	if len(byModel) == 0 {
		return models, nil
	}

	overlaid := make([]core.ModelInfo, len(models))
	for i, m := range models {
		if obs, ok := byModel[m.ID]; ok {
			overlaid[i] = core.OverlayCapabilities(m, obs)
		} else {
			overlaid[i] = m
		}
	}
	return overlaid, nil
}
