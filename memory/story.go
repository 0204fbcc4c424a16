package memory

import "strings"

// Metadata is the structured record attached to every story. The known
// fields mirror what the story writer stamps on each event; Extra is an open
// extension map for forward-compatible annotations that the memory system
// itself never reads.
//
// JSON tags keep the on-disk artifact keys snake_case so the metadata file
// stays greppable next to the raw story texts.
type Metadata struct {
	StoryID         string `json:"story_id"`
	AppName         string `json:"app_name"`
	Action          string `json:"action"`
	ActionType      string `json:"action_type"`
	Timestamp       string `json:"timestamp"`
	SessionID       string `json:"session_id"`
	UserID          string `json:"user_id"`
	ProjectName     string `json:"project_name"`
	ProjectCategory string `json:"project_category"`

	// AddedTimestamp and VectorIndex are stamped by the store itself on
	// append; caller-supplied values are overwritten.
	AddedTimestamp string `json:"added_timestamp"`
	VectorIndex    int    `json:"vector_index"`

	Extra map[string]string `json:"extra,omitempty"`
}

// Story is one persisted memory record: a narrative description of a user
// action, its metadata, and its L2-normalized embedding. A single slice of
// Story records replaces the index/metadata/text triple so positions can
// never drift apart.
type Story struct {
	Text      string
	Meta      Metadata
	Embedding []float32
}

// field resolves a filter key against the known metadata fields, falling
// back to Extra. The second return reports whether the key exists at all;
// unknown keys count as a non-match.
func (m *Metadata) field(key string) (string, bool) {
	switch key {
	case "story_id":
		return m.StoryID, true
	case "app_name":
		return m.AppName, true
	case "action":
		return m.Action, true
	case "action_type":
		return m.ActionType, true
	case "timestamp":
		return m.Timestamp, true
	case "session_id":
		return m.SessionID, true
	case "user_id":
		return m.UserID, true
	case "project_name":
		return m.ProjectName, true
	case "project_category":
		return m.ProjectCategory, true
	case "added_timestamp":
		return m.AddedTimestamp, true
	}
	v, ok := m.Extra[key]
	return v, ok
}

// Matches reports whether every filter value appears, case-insensitively, as
// a substring of the corresponding metadata field. All criteria must match.
func (m *Metadata) Matches(filters map[string]string) bool {
	for key, want := range filters {
		have, ok := m.field(key)
		if !ok {
			return false
		}
		if !strings.Contains(strings.ToLower(have), strings.ToLower(want)) {
			return false
		}
	}
	return true
}

// StringMap flattens the metadata into string key/value pairs for backends
// that store document metadata as flat maps.
func (m *Metadata) StringMap() map[string]string {
	out := map[string]string{
		"story_id":         m.StoryID,
		"app_name":         m.AppName,
		"action":           m.Action,
		"action_type":      m.ActionType,
		"timestamp":        m.Timestamp,
		"session_id":       m.SessionID,
		"user_id":          m.UserID,
		"project_name":     m.ProjectName,
		"project_category": m.ProjectCategory,
		"added_timestamp":  m.AddedTimestamp,
	}
	for k, v := range m.Extra {
		out[k] = v
	}
	return out
}

// actionTypes lists broad action categories with the keywords that signal
// them. Order matters: the first matching category wins.
var actionTypes = []struct {
	name     string
	keywords []string
}{
	{"creation", []string{"generate", "create", "build", "develop", "draft"}},
	{"modification", []string{"edit", "update", "modify", "change"}},
	{"sharing", []string{"send", "share", "publish", "deploy"}},
	{"analysis", []string{"analyze", "review", "check", "test"}},
	{"planning", []string{"ideate", "plan", "design", "conceptualize"}},
}

// ClassifyAction buckets a raw action name into a broader category so
// retrieval can filter on action_type ("creation", "sharing", ...).
// Unrecognized actions classify as "general".
func ClassifyAction(action string) string {
	lower := strings.ToLower(action)
	for _, at := range actionTypes {
		for _, kw := range at.keywords {
			if strings.Contains(lower, kw) {
				return at.name
			}
		}
	}
	return "general"
}
