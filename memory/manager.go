package memory

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Manager is the only entry point the rest of the application uses for
// memory. It embeds story text, appends to the backing store, and answers
// semantic, time-window, and project-scoped queries.
//
// Failure semantics: every recoverable error (empty input, embedding
// failure, persistence trouble) is swallowed here and converted to a bool or
// empty result, with a logged warning. The store is never left partially
// mutated: embedding happens before any state change, so a failed embed
// leaves no orphan vector or text. The only way to lose data is an explicit
// confirmed Clear.
type Manager struct {
	store    Store
	embedder Embedder
	config   *Config
}

// NewManager creates a Manager over a store and embedder.
// A nil config means DefaultConfig.
func NewManager(store Store, embedder Embedder, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig
	}
	if config.Overfetch < 1 {
		cfg := *config
		cfg.Overfetch = DefaultConfig.Overfetch
		config = &cfg
	}
	return &Manager{
		store:    store,
		embedder: embedder,
		config:   config,
	}
}

// AddStory embeds and appends one story, then persists. It returns false,
// with the store unchanged, on empty text or embedding failure. A generated
// story ID is assigned when meta.StoryID is empty.
func (m *Manager) AddStory(ctx context.Context, text string, meta Metadata) bool {
	return m.addStory(ctx, text, meta, m.config.Autosave)
}

// AddBatch adds multiple stories, saving once at the end instead of once
// per story. It returns the number of stories stored.
func (m *Manager) AddBatch(ctx context.Context, stories []StoryInput) int {
	added := 0
	for _, in := range stories {
		if m.addStory(ctx, in.Text, in.Meta, false) {
			added++
		}
	}
	if err := m.store.Save(); err != nil {
		log.Printf("[MEMORY] WARNING: batch save failed, durability not confirmed: %v", err)
	}
	log.Printf("[MEMORY] Added %d/%d stories in batch", added, len(stories))
	return added
}

func (m *Manager) addStory(ctx context.Context, text string, meta Metadata, persist bool) bool {
	if text == "" {
		log.Printf("[MEMORY] Rejecting story with empty text")
		return false
	}

	// Embed before touching any state so a provider failure cannot leave an
	// orphan vector or text behind.
	embedding, err := m.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("[MEMORY] Failed to embed story: %v", err)
		return false
	}
	embedding = Normalize(embedding)

	if meta.StoryID == "" {
		meta.StoryID = uuid.New().String()
	}
	meta.AddedTimestamp = time.Now().Format(time.RFC3339)

	pos, err := m.store.Append(ctx, &Story{Text: text, Meta: meta, Embedding: embedding})
	if err != nil {
		log.Printf("[MEMORY] Failed to append story %s: %v", meta.StoryID, err)
		return false
	}

	if persist {
		if err := m.store.Save(); err != nil {
			// The in-memory append already succeeded; the story is live but
			// its durability is not yet confirmed.
			log.Printf("[MEMORY] WARNING: save after append failed, durability not confirmed: %v", err)
		}
	}

	log.Printf("[MEMORY] Added story %s at position %d", meta.StoryID, pos)
	return true
}

// Search embeds the query, over-fetches raw candidates from the vector
// search, applies the filters in descending-similarity order, and returns up
// to topK matches annotated with a 1-based rank.
//
// Filters match case-insensitively by substring against metadata fields, all
// criteria ANDed. Results under selective filters are best-effort: the
// over-fetch window is Overfetch*topK, so matching stories deeper in the
// ranking can be missed.
func (m *Manager) Search(ctx context.Context, query string, topK int, filters map[string]string) []SearchResult {
	if topK <= 0 || m.store.Len() == 0 {
		return nil
	}

	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[MEMORY] Failed to embed query: %v", err)
		return nil
	}
	embedding = Normalize(embedding)

	fetch := topK * m.config.Overfetch
	if fetch > m.store.Len() {
		fetch = m.store.Len()
	}
	hits, err := m.store.Search(ctx, embedding, fetch)
	if err != nil {
		log.Printf("[MEMORY] Vector search failed: %v", err)
		return nil
	}

	var results []SearchResult
	for _, hit := range hits {
		story, ok := m.store.Story(hit.Position)
		if !ok {
			continue
		}
		if len(filters) > 0 && !story.Meta.Matches(filters) {
			continue
		}
		results = append(results, SearchResult{
			StoryText:  story.Text,
			Metadata:   story.Meta,
			Similarity: hit.Score,
			Rank:       len(results) + 1,
		})
		if len(results) >= topK {
			break
		}
	}
	return results
}

// SearchByTimeframe returns stories whose timestamp is on or after now minus
// daysBack days, newest first, up to topK. Matches carry a synthetic
// similarity of 1.0: relevance is temporal, not semantic. Stories with
// unparsable timestamps are silently excluded.
func (m *Manager) SearchByTimeframe(daysBack, topK int) []SearchResult {
	if topK <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -daysBack)

	type timedResult struct {
		result SearchResult
		at     time.Time
	}
	var recent []timedResult
	m.store.Iterate(func(_ int, story *Story) bool {
		at, err := parseTimestamp(story.Meta.Timestamp)
		if err != nil {
			return true
		}
		if at.Before(cutoff) {
			return true
		}
		recent = append(recent, timedResult{
			result: SearchResult{StoryText: story.Text, Metadata: story.Meta, Similarity: 1.0},
			at:     at,
		})
		return true
	})

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].at.After(recent[j].at)
	})
	if len(recent) > topK {
		recent = recent[:topK]
	}

	results := make([]SearchResult, len(recent))
	for i, tr := range recent {
		tr.result.Rank = i + 1
		results[i] = tr.result
	}
	return results
}

// SearchByProject runs a semantic search seeded by the project name,
// filtered to stories whose project_name contains it.
func (m *Manager) SearchByProject(ctx context.Context, projectName string, topK int) []SearchResult {
	filters := map[string]string{"project_name": strings.ToLower(projectName)}
	return m.Search(ctx, "project "+projectName, topK, filters)
}

// ForceSave flushes the store to disk. Used at shutdown so no
// buffered-but-unpersisted story is lost when Autosave is off or a batch is
// in flight.
func (m *Manager) ForceSave() error {
	if err := m.store.Save(); err != nil {
		log.Printf("[MEMORY] WARNING: force save failed: %v", err)
		return err
	}
	log.Printf("[MEMORY] Storage saved to disk")
	return nil
}

// Clear destroys all stored memories, on disk and in memory. It is a no-op
// unless confirm is true. This is the only deletion path in the system.
func (m *Manager) Clear(confirm bool) error {
	if !confirm {
		log.Printf("[MEMORY] Clear called without confirm; ignoring")
		return nil
	}
	if err := m.store.Clear(); err != nil {
		return err
	}
	log.Printf("[MEMORY] All memory storage cleared")
	return nil
}

// timestampLayouts are tried in order when parsing story timestamps. The
// zoneless layouts cover writers that emit bare ISO timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(ts string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var at time.Time
		at, err = time.ParseInLocation(layout, ts, time.Local)
		if err == nil {
			return at, nil
		}
	}
	return time.Time{}, err
}
