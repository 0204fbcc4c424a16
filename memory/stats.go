package memory

import "sort"

// Stats summarizes the memory store for admin and debugging surfaces.
type Stats struct {
	TotalStories     int
	StorageSizeBytes int64
	AppsCovered      []string
	ProjectsCovered  []string
	DateRange        string
}

// Stats scans all metadata and returns store-wide statistics. A zero-story
// store yields zeroed fields, not an error.
func (m *Manager) Stats() Stats {
	if m.store.Len() == 0 {
		return Stats{DateRange: "no stories yet"}
	}

	apps := make(map[string]struct{})
	projects := make(map[string]struct{})
	var timestamps []string
	m.store.Iterate(func(_ int, story *Story) bool {
		apps[orUnknown(story.Meta.AppName)] = struct{}{}
		projects[orUnknown(story.Meta.ProjectName)] = struct{}{}
		if story.Meta.Timestamp != "" {
			timestamps = append(timestamps, story.Meta.Timestamp)
		}
		return true
	})

	dateRange := "no dates available"
	if len(timestamps) > 0 {
		sort.Strings(timestamps)
		dateRange = datePart(timestamps[0]) + " to " + datePart(timestamps[len(timestamps)-1])
	}

	return Stats{
		TotalStories:     m.store.Len(),
		StorageSizeBytes: m.store.SizeOnDisk(),
		AppsCovered:      sortedKeys(apps),
		ProjectsCovered:  sortedKeys(projects),
		DateRange:        dateRange,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// datePart keeps the YYYY-MM-DD prefix of an ISO timestamp.
func datePart(ts string) string {
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
