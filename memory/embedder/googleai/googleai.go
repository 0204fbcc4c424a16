// Package googleai implements memory.Embedder on Google's hosted embedding
// API via the generative-ai-go SDK.
package googleai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Config configures the Google embedder.
type Config struct {
	// APIKey authenticates against the API. Falls back to the
	// GOOGLE_API_KEY environment variable.
	APIKey string

	// Model is the embedding model name (default: "text-embedding-004").
	Model string

	// Dimensions is the embedding vector size (default: 768, what
	// text-embedding-004 produces).
	Dimensions int
}

// Embedder generates embeddings with Google's text-embedding models.
// Failures are returned as-is: no retries and no dummy fallback, the caller
// decides what a failed embedding means.
type Embedder struct {
	client     *genai.Client
	model      *genai.EmbeddingModel
	dimensions int
}

// New creates a Google embedder. The context is only used for client setup.
func New(ctx context.Context, cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("googleai: API key is required (set GOOGLE_API_KEY)")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 768
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("googleai: create client: %w", err)
	}

	model := client.EmbeddingModel(cfg.Model)
	model.TaskType = genai.TaskTypeRetrievalDocument

	return &Embedder{
		client:     client,
		model:      model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed converts text to an embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("googleai: embed content: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, errors.New("googleai: empty embedding response")
	}
	return resp.Embedding.Values, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the underlying API client.
func (e *Embedder) Close() error {
	return e.client.Close()
}
