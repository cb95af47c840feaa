package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/petal-labs/iris/core"
)

const embeddingsPath = "/embeddings"

// CreateEmbeddings generates embeddings for the given input texts, retrying
// during the start phase per the provider's retry policy.
func (p *OpenAI) CreateEmbeddings(ctx context.Context, req *core.EmbeddingRequest) (*core.EmbeddingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return core.CallWithRetry(ctx, p.startGuard(), p.retryPolicy(), nil, func(ctx context.Context) (*core.EmbeddingResponse, error) {
		return p.embeddingsOnce(ctx, req)
	})
}

func (p *OpenAI) embeddingsOnce(ctx context.Context, req *core.EmbeddingRequest) (*core.EmbeddingResponse, error) {
	oaiReq := buildEmbeddingRequest(req)

	body, err := json.Marshal(oaiReq)
	if err != nil {
		return nil, newDecodeError("embeddings", core.StageStart, err)
	}

	url := p.config.BaseURL + embeddingsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newDecodeError("embeddings", core.StageStart, err)
	}
	for key, values := range p.buildHeaders() {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError("embeddings", core.StageStart, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError("embeddings", core.StageStart, err)
	}

	if resp.StatusCode >= 400 {
		return nil, normalizeError("embeddings", core.StageStart, resp.StatusCode, respBody)
	}

	var oaiResp openAIEmbeddingResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return nil, newDecodeError("embeddings", core.StageFinalize, err)
	}

	return mapEmbeddingResponse(req, &oaiResp), nil
}

// buildEmbeddingRequest converts an Iris EmbeddingRequest to the OpenAI wire
// shape. Per-input IDs and metadata have no OpenAI wire equivalent and are
// dropped; they are restored on the response by index.
func buildEmbeddingRequest(req *core.EmbeddingRequest) *openAIEmbeddingRequest {
	input := make([]string, len(req.Input))
	for i, in := range req.Input {
		input[i] = in.Text
	}

	oaiReq := &openAIEmbeddingRequest{
		Model:      string(req.Model),
		Input:      input,
		Dimensions: req.Dimensions,
		User:       req.User,
	}

	if req.EncodingFormat != "" {
		oaiReq.EncodingFormat = string(req.EncodingFormat)
	}

	return oaiReq
}

// mapEmbeddingResponse converts an OpenAI embeddings response to an Iris
// EmbeddingResponse, re-attaching the ID/metadata carried on the original
// request inputs by index.
func mapEmbeddingResponse(req *core.EmbeddingRequest, resp *openAIEmbeddingResponse) *core.EmbeddingResponse {
	vectors := make([]core.EmbeddingVector, len(resp.Data))
	for i, d := range resp.Data {
		v := core.EmbeddingVector{Index: d.Index, Vector: d.Embedding}
		if d.Index < len(req.Input) {
			v.ID = req.Input[d.Index].ID
			v.Metadata = req.Input[d.Index].Metadata
		}
		vectors[i] = v
	}

	return &core.EmbeddingResponse{
		Vectors: vectors,
		Model:   req.Model,
		Usage: core.EmbeddingUsage{
			PromptTokens: resp.Usage.PromptTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
}
