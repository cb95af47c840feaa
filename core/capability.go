package core

import "time"

// CapabilityState is a three-valued observation: a feature has either been
// demonstrated, explicitly rejected, or never exercised. There is no
// "inferred" state — capability is never derived from a model name.
type CapabilityState string

const (
	CapabilityUnknown   CapabilityState = "unknown"
	CapabilitySupported CapabilityState = "supported"
	CapabilityRejected  CapabilityState = "rejected"
)

// ObservedCapability is one data-backed capability record for a
// (provider, model, feature) triple (§4.7). Supported is set true only
// after an invocation actually demonstrated the feature (e.g. a
// well-formed JSON response for json_output); Supported is set false only
// after the provider explicitly rejected it (a dedicated unsupported error
// code, or an explicit capability-negotiation rejection). ObservedAt is the
// evidence's timestamp, used to resolve conflicting observations.
type ObservedCapability struct {
	Provider   string
	Model      ModelID
	Feature    Feature
	State      CapabilityState
	ObservedAt time.Time
}

// MergeObserved folds a new observation into an existing map keyed by
// Feature, keeping whichever record has the later ObservedAt. A later
// observation always wins regardless of direction (supported can overwrite
// a stale rejected and vice versa) since the world can change between
// observations (§4.7).
func MergeObserved(existing map[Feature]ObservedCapability, next ObservedCapability) map[Feature]ObservedCapability {
	if existing == nil {
		existing = make(map[Feature]ObservedCapability)
	}
	cur, ok := existing[next.Feature]
	if !ok || !next.ObservedAt.Before(cur.ObservedAt) {
		existing[next.Feature] = next
	}
	return existing
}

// OverlayCapabilities applies a set of observed-capability records onto a
// snapshot ModelInfo's Capabilities list, per the read-time overlay rule in
// §4.7: observed-supported adds the feature if absent; observed-rejected
// removes it if present. Unknown/unobserved features are left exactly as
// the snapshot reported them.
func OverlayCapabilities(info ModelInfo, observed map[Feature]ObservedCapability) ModelInfo {
	if len(observed) == 0 {
		return info
	}

	present := make(map[Feature]bool, len(info.Capabilities))
	for _, f := range info.Capabilities {
		present[f] = true
	}

	for feature, rec := range observed {
		switch rec.State {
		case CapabilitySupported:
			present[feature] = true
		case CapabilityRejected:
			present[feature] = false
		}
	}

	merged := make([]Feature, 0, len(present))
	for _, f := range AllFeatures() {
		if present[f] {
			merged = append(merged, f)
		}
	}
	info.Capabilities = merged
	return info
}
