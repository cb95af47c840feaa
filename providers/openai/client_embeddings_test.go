package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petal-labs/iris/core"
)

func TestCreateEmbeddings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != embeddingsPath {
			t.Errorf("Path = %q, want %q", r.URL.Path, embeddingsPath)
		}

		var req openAIEmbeddingRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Model != "text-embedding-3-small" {
			t.Errorf("Model = %q, want text-embedding-3-small", req.Model)
		}
		if len(req.Input) != 2 {
			t.Errorf("Input count = %d, want 2", len(req.Input))
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(openAIEmbeddingResponse{
			Object: "list",
			Model:  "text-embedding-3-small",
			Data: []openAIEmbeddingDatum{
				{Index: 0, Embedding: []float32{0.1, 0.2, 0.3}},
				{Index: 1, Embedding: []float32{0.4, 0.5, 0.6}},
			},
			Usage: openAIEmbeddingUsage{PromptTokens: 6, TotalTokens: 6},
		})
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))

	req := &core.EmbeddingRequest{
		Model: ModelTextEmbedding3Small,
		Input: []core.EmbeddingInput{
			{Text: "hello", ID: "doc-1"},
			{Text: "world", ID: "doc-2"},
		},
	}

	resp, err := p.CreateEmbeddings(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateEmbeddings() error = %v", err)
	}

	if len(resp.Vectors) != 2 {
		t.Fatalf("len(Vectors) = %d, want 2", len(resp.Vectors))
	}

	if resp.Vectors[0].ID != "doc-1" {
		t.Errorf("Vectors[0].ID = %q, want 'doc-1'", resp.Vectors[0].ID)
	}

	if len(resp.Vectors[0].Vector) != 3 {
		t.Errorf("len(Vectors[0].Vector) = %d, want 3", len(resp.Vectors[0].Vector))
	}

	if resp.Usage.TotalTokens != 6 {
		t.Errorf("Usage.TotalTokens = %d, want 6", resp.Usage.TotalTokens)
	}
}

func TestCreateEmbeddingsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid input"}}`))
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL), WithRetryPolicy(core.RetryPolicy{MaxAttempts: 1}))

	req := &core.EmbeddingRequest{
		Model: ModelTextEmbedding3Small,
		Input: []core.EmbeddingInput{{Text: "hello"}},
	}

	_, err := p.CreateEmbeddings(context.Background(), req)
	if err == nil {
		t.Fatal("CreateEmbeddings() should return error")
	}

	provErr, ok := err.(*core.ProviderError)
	if !ok {
		t.Fatalf("error should be *core.ProviderError, got %T", err)
	}
	if provErr.Code != core.ErrCodeBadRequest {
		t.Errorf("Code = %q, want bad_request", provErr.Code)
	}
}

func TestCreateEmbeddingsValidation(t *testing.T) {
	p := New("test-key")

	tests := []struct {
		name string
		req  *core.EmbeddingRequest
	}{
		{"no model", &core.EmbeddingRequest{Input: []core.EmbeddingInput{{Text: "hello"}}}},
		{"no input", &core.EmbeddingRequest{Model: ModelTextEmbedding3Small}},
		{"empty input text", &core.EmbeddingRequest{Model: ModelTextEmbedding3Small, Input: []core.EmbeddingInput{{Text: ""}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.CreateEmbeddings(context.Background(), tt.req); err == nil {
				t.Error("CreateEmbeddings() should return a validation error")
			}
		})
	}
}

func TestBuildEmbeddingRequest(t *testing.T) {
	dims := 256
	req := &core.EmbeddingRequest{
		Model:          ModelTextEmbedding3Small,
		Input:          []core.EmbeddingInput{{Text: "a"}, {Text: "b"}},
		EncodingFormat: core.EncodingFormatFloat,
		Dimensions:     &dims,
		User:           "user-1",
	}

	result := buildEmbeddingRequest(req)

	if result.Model != "text-embedding-3-small" {
		t.Errorf("Model = %q, want text-embedding-3-small", result.Model)
	}
	if len(result.Input) != 2 {
		t.Errorf("len(Input) = %d, want 2", len(result.Input))
	}
	if result.EncodingFormat != "float" {
		t.Errorf("EncodingFormat = %q, want float", result.EncodingFormat)
	}
	if result.Dimensions == nil || *result.Dimensions != 256 {
		t.Errorf("Dimensions = %v, want 256", result.Dimensions)
	}
	if result.User != "user-1" {
		t.Errorf("User = %q, want user-1", result.User)
	}
}
