package memory

import "context"

// Store is the storage backend for stories. It owns the co-indexed record
// array: the position returned by Append is the story's primary key, and the
// same position is what Search and Story report.
//
// Implementations: flat.Store (durable, on-disk artifacts) and
// chromem.Store (in-memory, chromem-go backed).
//
// The store assumes a single writer. Reads may run concurrently with each
// other; implementations serialize them against Append, Save, and Clear.
type Store interface {
	// Append adds a story (embedding already set and normalized) at the next
	// sequential position, stamps Meta.VectorIndex, and returns the position.
	// It fails on embedding dimension mismatch and never persists by itself.
	Append(ctx context.Context, story *Story) (int, error)

	// Search returns up to k (position, similarity) pairs ordered by
	// decreasing cosine similarity to the query vector, ties broken by
	// insertion order. An empty store yields an empty result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)

	// Story returns the record at a position, or false if out of range.
	Story(position int) (*Story, bool)

	// Len returns the number of stored stories.
	Len() int

	// Iterate walks records in position order until fn returns false.
	Iterate(fn func(position int, story *Story) bool)

	// Save persists the current state. A no-op for purely in-memory
	// backends.
	Save() error

	// SizeOnDisk reports the total bytes of the persisted artifacts.
	SizeOnDisk() int64

	// Clear deletes all persisted artifacts and resets the store to empty.
	Clear() error

	// Close releases resources. It does not flush; call Save first if
	// durability matters.
	Close() error
}

// Hit is one vector search result: a story position and its cosine
// similarity to the query.
type Hit struct {
	Position int
	Score    float32
}

// Embedder converts text to a fixed-length embedding vector.
// Implementations: mock (testing), googleai (hosted), onnx (local, behind
// the onnx build tag).
//
// Embedder calls are the only point in the memory system that waits on an
// external service; errors are surfaced as operation failures and never
// retried here.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// SearchResult is one ranked match returned by Manager queries.
type SearchResult struct {
	StoryText  string
	Metadata   Metadata
	Similarity float32
	Rank       int // 1-based
}

// StoryInput is one story for batch insertion.
type StoryInput struct {
	Text string
	Meta Metadata
}

// Config holds Manager tuning knobs.
type Config struct {
	// Overfetch multiplies topK when pulling raw candidates from the vector
	// search so that post-filtering does not starve results. Best-effort:
	// a very selective filter can still return fewer than topK matches even
	// when more exist deeper in the ranking.
	// Default: 3.
	Overfetch int

	// Autosave persists after every successful AddStory. AddBatch always
	// saves once at the end regardless.
	// Default: true.
	Autosave bool
}

// DefaultConfig returns the reference behavior: 3x over-fetch and
// save-on-every-write.
var DefaultConfig = &Config{
	Overfetch: 3,
	Autosave:  true,
}
