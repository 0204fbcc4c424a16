// Package mock provides a deterministic embedder for tests.
package mock

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/musehq/muse-go-sdk/memory"
)

// DefaultDimensions matches the hosted text-embedding-004 model so tests
// exercise production-sized vectors.
const DefaultDimensions = 768

// Embedder generates deterministic embeddings without any model or network.
// Each lowercased token hashes to a pseudo-random unit direction and the
// text embeds as the normalized sum, so texts sharing words genuinely score
// higher cosine similarity than unrelated ones. Good enough to test ranking,
// useless for real semantics.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with DefaultDimensions.
func New() *Embedder {
	return NewWithDimensions(DefaultDimensions)
}

// NewWithDimensions creates a mock embedder producing vectors of the given
// size.
func NewWithDimensions(dimensions int) *Embedder {
	return &Embedder{dimensions: dimensions}
}

// Embed creates a deterministic embedding from text.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	embedding := make([]float32, e.dimensions)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'")
		if token == "" {
			continue
		}

		h := fnv.New64a()
		h.Write([]byte(token))
		seed := h.Sum64()

		// LCG stream seeded by the token hash: same token, same direction.
		for i := 0; i < e.dimensions; i++ {
			seed = seed*6364136223846793005 + 1442695040888963407
			embedding[i] += float32(int64(seed)) / float32(1<<63)
		}
	}

	return memory.Normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}
