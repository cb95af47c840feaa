// Package openai provides an OpenAI API provider implementation for Iris.
package openai

import "github.com/petal-labs/iris/core"

// Model constants for OpenAI chat models.
const (
	// GPT-5 series
	ModelGPT5     core.ModelID = "gpt-5"
	ModelGPT5Mini core.ModelID = "gpt-5-mini"
	ModelGPT5Nano core.ModelID = "gpt-5-nano"

	// GPT-4.1 series
	ModelGPT41     core.ModelID = "gpt-4.1"
	ModelGPT41Mini core.ModelID = "gpt-4.1-mini"
	ModelGPT41Nano core.ModelID = "gpt-4.1-nano"

	// GPT-4o series
	ModelGPT4o     core.ModelID = "gpt-4o"
	ModelGPT4oMini core.ModelID = "gpt-4o-mini"

	// GPT-4 series
	ModelGPT4Turbo core.ModelID = "gpt-4-turbo"
	ModelGPT4      core.ModelID = "gpt-4"

	// GPT-3.5 series
	ModelGPT35Turbo core.ModelID = "gpt-3.5-turbo"

	// Reasoning models (o-series)
	ModelO3     core.ModelID = "o3"
	ModelO3Mini core.ModelID = "o3-mini"
	ModelO1     core.ModelID = "o1"

	// Embedding models
	ModelTextEmbedding3Small core.ModelID = "text-embedding-3-small"
	ModelTextEmbedding3Large core.ModelID = "text-embedding-3-large"
	ModelTextEmbeddingAda002 core.ModelID = "text-embedding-ada-002"
)

// models is the static list of supported models.
var models = []core.ModelInfo{
	{
		ID:   ModelGPT5,
		Name: "GPT-5",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
			core.FeatureJSONOutput,
			core.FeatureVision,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT5Mini,
		Name: "GPT-5 Mini",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
			core.FeatureJSONOutput,
			core.FeatureVision,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT5Nano,
		Name: "GPT-5 Nano",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
			core.FeatureJSONOutput,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT41,
		Name: "GPT-4.1",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
			core.FeatureJSONOutput,
			core.FeatureVision,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT41Mini,
		Name: "GPT-4.1 Mini",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
			core.FeatureJSONOutput,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT41Nano,
		Name: "GPT-4.1 Nano",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
			core.FeatureJSONOutput,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT4o,
		Name: "GPT-4o",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
			core.FeatureJSONOutput,
			core.FeatureVision,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT4oMini,
		Name: "GPT-4o Mini",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
			core.FeatureJSONOutput,
			core.FeatureVision,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT4Turbo,
		Name: "GPT-4 Turbo",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
			core.FeatureVision,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT4,
		Name: "GPT-4",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelGPT35Turbo,
		Name: "GPT-3.5 Turbo",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelO3,
		Name: "o3",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelO3Mini,
		Name: "o3-mini",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:   ModelO1,
		Name: "o1",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
		},
		Provenance: core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:           ModelTextEmbedding3Small,
		Name:         "Text Embedding 3 Small",
		Capabilities: []core.Feature{core.FeatureEmbeddings},
		Provenance:   core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:           ModelTextEmbedding3Large,
		Name:         "Text Embedding 3 Large",
		Capabilities: []core.Feature{core.FeatureEmbeddings},
		Provenance:   core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
	{
		ID:           ModelTextEmbeddingAda002,
		Name:         "Text Embedding Ada 002",
		Capabilities: []core.Feature{core.FeatureEmbeddings},
		Provenance:   core.Provenance{FetchedVia: "cache", Source: "snapshot"},
	},
}

// modelRegistry is a map for quick model lookup by ID.
var modelRegistry = buildModelRegistry()

// buildModelRegistry creates a map from model ID to ModelInfo.
func buildModelRegistry() map[core.ModelID]*core.ModelInfo {
	registry := make(map[core.ModelID]*core.ModelInfo, len(models))
	for i := range models {
		registry[models[i].ID] = &models[i]
	}
	return registry
}

// GetModelInfo returns the ModelInfo for a given model ID, or nil if not found.
func GetModelInfo(id core.ModelID) *core.ModelInfo {
	return modelRegistry[id]
}
