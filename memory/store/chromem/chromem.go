// Package chromem implements memory.Store on chromem-go, a pure Go embedded
// vector database. It is the in-memory alternative to the flat store: same
// contract and the same positional co-indexing, but nothing written to disk.
// Use it for tests, demos, and deployments that treat memory as a cache.
package chromem

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/musehq/muse-go-sdk/memory"
)

const collectionName = "stories"

// Store keeps story records in a slice for positional access and iteration,
// and mirrors their embeddings into a chromem collection for similarity
// queries. The slice is the source of truth; chromem documents carry the
// position as their ID.
type Store struct {
	mu      sync.RWMutex
	db      *chromem.DB
	col     *chromem.Collection
	stories []*memory.Story
}

// New creates an empty in-memory store.
func New() (*Store, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: create collection: %w", err)
	}
	return &Store{db: db, col: col}, nil
}

// Append adds a story at the next position and mirrors it into chromem.
func (s *Store) Append(ctx context.Context, story *memory.Story) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.stories) > 0 && len(story.Embedding) != len(s.stories[0].Embedding) {
		return 0, fmt.Errorf("chromem: embedding dimension %d does not match existing %d",
			len(story.Embedding), len(s.stories[0].Embedding))
	}

	position := len(s.stories)
	story.Meta.VectorIndex = position

	doc := chromem.Document{
		ID:        strconv.Itoa(position),
		Content:   story.Text,
		Embedding: story.Embedding,
		Metadata:  story.Meta.StringMap(),
	}
	if err := s.col.AddDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("chromem: add document: %w", err)
	}

	s.stories = append(s.stories, story)
	return position, nil
}

// Search queries the chromem collection and maps document IDs back to
// positions. chromem rejects result counts larger than the collection, so k
// is clamped first.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]memory.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.stories) == 0 || k <= 0 {
		return nil, nil
	}
	if k > len(s.stories) {
		k = len(s.stories)
	}

	results, err := s.col.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}

	hits := make([]memory.Hit, 0, len(results))
	for _, result := range results {
		position, err := strconv.Atoi(result.ID)
		if err != nil || position < 0 || position >= len(s.stories) {
			continue
		}
		hits = append(hits, memory.Hit{Position: position, Score: result.Similarity})
	}
	return hits, nil
}

// Story returns the record at a position.
func (s *Store) Story(position int) (*memory.Story, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if position < 0 || position >= len(s.stories) {
		return nil, false
	}
	return s.stories[position], true
}

// Len returns the number of stored stories.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stories)
}

// Iterate walks records in position order until fn returns false.
func (s *Store) Iterate(fn func(position int, story *memory.Story) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, story := range s.stories {
		if !fn(i, story) {
			return
		}
	}
}

// Save is a no-op: this backend keeps everything in memory.
func (s *Store) Save() error {
	return nil
}

// SizeOnDisk is always zero for the in-memory backend.
func (s *Store) SizeOnDisk() int64 {
	return 0
}

// Clear drops the collection and resets the record array.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := chromem.NewDB()
	col, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("chromem: recreate collection: %w", err)
	}
	s.db = db
	s.col = col
	s.stories = nil
	return nil
}

// Close releases resources. chromem keeps everything in memory, so there is
// nothing to release.
func (s *Store) Close() error {
	return nil
}

var _ memory.Store = (*Store)(nil)
