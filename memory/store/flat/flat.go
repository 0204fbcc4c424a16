// Package flat implements the durable memory.Store: a single in-memory array
// of story records with exact brute-force cosine search, persisted to three
// co-located artifacts in a storage directory.
//
// Artifacts, all in position order:
//   - stories.index: gob-encoded normalized embedding vectors
//   - stories_metadata.json: one metadata record per story
//   - stories_text.json: one raw narrative string per story
//
// The JSON artifacts are kept human-inspectable on purpose; operators read
// them directly when debugging what the agent remembers.
package flat

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/musehq/muse-go-sdk/memory"
)

const (
	indexFile    = "stories.index"
	metadataFile = "stories_metadata.json"
	textFile     = "stories_text.json"
)

// Store is the durable story store. One slice of records backs vectors,
// metadata, and text alike, so positions cannot drift apart.
type Store struct {
	mu        sync.RWMutex
	dir       string
	dimension int
	stories   []*memory.Story
}

// indexSnapshot is the gob payload of the stories.index artifact.
type indexSnapshot struct {
	Dimension int
	Vectors   [][]float32
}

// Open creates or reloads a store in dir for embeddings of the given
// dimension. If prior artifacts exist and are well-formed, the store is
// rebuilt from them; if any artifact is missing or fails to parse, Open logs
// the problem and starts fresh rather than failing. Losing a days-old memory
// store must never take the service down with it.
func Open(dir string, dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("flat: dimension must be positive, got %d", dimension)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("flat: create storage dir: %w", err)
	}

	s := &Store{dir: dir, dimension: dimension}
	s.load()
	log.Printf("[FLAT] Store opened at %s with %d existing stories", dir, len(s.stories))
	return s, nil
}

// load rebuilds the record array from the on-disk artifacts, falling back to
// an empty store on any inconsistency.
func (s *Store) load() {
	idx, err := s.loadIndex()
	if err != nil {
		s.freshAfter(err)
		return
	}
	metas, err := s.loadMetadata()
	if err != nil {
		s.freshAfter(err)
		return
	}
	texts, err := s.loadTexts()
	if err != nil {
		s.freshAfter(err)
		return
	}

	if idx.Dimension != s.dimension {
		s.freshAfter(fmt.Errorf("index dimension %d does not match configured %d", idx.Dimension, s.dimension))
		return
	}
	if len(idx.Vectors) != len(metas) || len(metas) != len(texts) {
		s.freshAfter(fmt.Errorf("artifact lengths diverge: %d vectors, %d metadata, %d texts",
			len(idx.Vectors), len(metas), len(texts)))
		return
	}

	stories := make([]*memory.Story, len(texts))
	for i := range texts {
		stories[i] = &memory.Story{
			Text:      texts[i],
			Meta:      metas[i],
			Embedding: idx.Vectors[i],
		}
	}
	s.stories = stories
}

func (s *Store) freshAfter(err error) {
	if os.IsNotExist(err) {
		// First run, nothing on disk yet.
		s.stories = nil
		return
	}
	log.Printf("[FLAT] Cannot load existing storage, starting fresh: %v", err)
	s.stories = nil
}

func (s *Store) loadIndex() (*indexSnapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		return nil, err
	}
	var snap indexSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", indexFile, err)
	}
	return &snap, nil
}

func (s *Store) loadMetadata() ([]memory.Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, metadataFile))
	if err != nil {
		return nil, err
	}
	var metas []memory.Metadata
	if err := json.Unmarshal(data, &metas); err != nil {
		return nil, fmt.Errorf("decode %s: %w", metadataFile, err)
	}
	return metas, nil
}

func (s *Store) loadTexts() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, textFile))
	if err != nil {
		return nil, err
	}
	var texts []string
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", textFile, err)
	}
	return texts, nil
}

// Append adds a story at the next position. The embedding must already be
// normalized and of the configured dimension.
func (s *Store) Append(_ context.Context, story *memory.Story) (int, error) {
	if len(story.Embedding) != s.dimension {
		return 0, fmt.Errorf("flat: embedding dimension %d does not match configured %d",
			len(story.Embedding), s.dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	position := len(s.stories)
	story.Meta.VectorIndex = position
	s.stories = append(s.stories, story)
	return position, nil
}

// Search runs an exact scan over all stored vectors and returns the top k by
// inner product (cosine similarity over normalized vectors), ties broken by
// insertion order.
func (s *Store) Search(_ context.Context, query []float32, k int) ([]memory.Hit, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("flat: query dimension %d does not match configured %d",
			len(query), s.dimension)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.stories) == 0 || k <= 0 {
		return nil, nil
	}

	hits := make([]memory.Hit, len(s.stories))
	for i, story := range s.stories {
		hits[i] = memory.Hit{Position: i, Score: memory.Dot(query, story.Embedding)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
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

// Save writes all three artifacts, each via write-to-temp-then-rename so a
// crash mid-save never leaves a torn file. A crash between renames can leave
// one artifact newer than another; because the store is append-only the
// artifacts then differ in length, which load detects and answers with the
// fresh-store fallback.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := indexSnapshot{Dimension: s.dimension, Vectors: make([][]float32, len(s.stories))}
	metas := make([]memory.Metadata, len(s.stories))
	texts := make([]string, len(s.stories))
	for i, story := range s.stories {
		snap.Vectors[i] = story.Embedding
		metas[i] = story.Meta
		texts[i] = story.Text
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return fmt.Errorf("flat: encode index: %w", err)
	}
	metaData, err := json.MarshalIndent(metas, "", "  ")
	if err != nil {
		return fmt.Errorf("flat: encode metadata: %w", err)
	}
	textData, err := json.MarshalIndent(texts, "", "  ")
	if err != nil {
		return fmt.Errorf("flat: encode texts: %w", err)
	}

	if err := s.writeAtomic(indexFile, buf.Bytes()); err != nil {
		return err
	}
	if err := s.writeAtomic(metadataFile, metaData); err != nil {
		return err
	}
	return s.writeAtomic(textFile, textData)
}

func (s *Store) writeAtomic(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("flat: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("flat: replace %s: %w", name, err)
	}
	return nil
}

// SizeOnDisk sums the bytes of the persisted artifacts.
func (s *Store) SizeOnDisk() int64 {
	var total int64
	for _, name := range []string{indexFile, metadataFile, textFile} {
		if info, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
			total += info.Size()
		}
	}
	return total
}

// Clear deletes all on-disk artifacts and resets the in-memory state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{indexFile, metadataFile, textFile} {
		path := filepath.Join(s.dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("flat: remove %s: %w", name, err)
		}
	}
	s.stories = nil
	return nil
}

// Close releases resources. It does not flush; save explicitly first.
func (s *Store) Close() error {
	return nil
}

var _ memory.Store = (*Store)(nil)
