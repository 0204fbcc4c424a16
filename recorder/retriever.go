package recorder

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/musehq/muse-go-sdk/core"
	"github.com/musehq/muse-go-sdk/memory"
)

// Strategy names how a chat message was routed to a memory query.
type Strategy string

const (
	StrategyTimeframe Strategy = "timeframe"
	StrategyProject   Strategy = "project"
	StrategySemantic  Strategy = "semantic"
)

// timePhrases maps query phrasing to a lookback window in days.
var timePhrases = []struct {
	phrase   string
	daysBack int
}{
	{"today", 1},
	{"yesterday", 2},
	{"this week", 7},
	{"last week", 14},
	{"this month", 30},
	{"recent", 7},
}

// ChatContext is the memory context assembled for one chat message.
type ChatContext struct {
	Stories  []memory.SearchResult
	Strategy Strategy
}

// HasContext reports whether any relevant stories were found.
func (c ChatContext) HasContext() bool {
	return len(c.Stories) > 0
}

// ContextForChat retrieves memory context for a chat message. Time phrasing
// ("what did I do this week") routes to the time-window query; a mention of
// the session's current project routes to the project query; everything else
// is a plain semantic search. Lookup failures yield empty context so the
// chat flow proceeds without memory rather than erroring.
func (r *Recorder) ContextForChat(ctx context.Context, message string, session *core.SessionState, maxStories int) ChatContext {
	strategy, stories := r.retrieve(ctx, message, session, maxStories)
	log.Printf("[RECORDER] Retrieved %d stories via %s strategy", len(stories), strategy)
	return ChatContext{Stories: stories, Strategy: strategy}
}

// ProjectTimeline is a chronological summary of activity on one project.
type ProjectTimeline struct {
	ProjectName     string
	Activities      []memory.SearchResult
	TotalActivities int
	DateRange       string
}

// HasData reports whether any activity was found for the project.
func (t ProjectTimeline) HasData() bool {
	return t.TotalActivities > 0
}

// ProjectTimeline collects stories for one project and orders them oldest
// first. Timestamps are ISO strings, so lexicographic order is chronological
// order; stories without a timestamp sort first and the date range is taken
// from the ones that have one.
func (r *Recorder) ProjectTimeline(ctx context.Context, projectName string, maxStories int) ProjectTimeline {
	timeline := ProjectTimeline{ProjectName: projectName, DateRange: "No activities found"}

	stories := r.manager.SearchByProject(ctx, projectName, maxStories)
	if len(stories) == 0 {
		return timeline
	}

	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].Metadata.Timestamp < stories[j].Metadata.Timestamp
	})

	var timestamps []string
	for _, story := range stories {
		if story.Metadata.Timestamp != "" {
			timestamps = append(timestamps, story.Metadata.Timestamp)
		}
	}
	timeline.DateRange = "Unknown dates"
	if len(timestamps) > 0 {
		timeline.DateRange = day(timestamps[0]) + " to " + day(timestamps[len(timestamps)-1])
	}

	timeline.Activities = stories
	timeline.TotalActivities = len(stories)
	log.Printf("[RECORDER] Project timeline for %q: %d activities, %s",
		projectName, timeline.TotalActivities, timeline.DateRange)
	return timeline
}

func day(timestamp string) string {
	if len(timestamp) > 10 {
		return timestamp[:10]
	}
	return timestamp
}

func (r *Recorder) retrieve(ctx context.Context, message string, session *core.SessionState, maxStories int) (Strategy, []memory.SearchResult) {
	lower := strings.ToLower(message)

	for _, tp := range timePhrases {
		if strings.Contains(lower, tp.phrase) {
			return StrategyTimeframe, r.manager.SearchByTimeframe(tp.daysBack, maxStories)
		}
	}

	if session != nil && session.Project.Name != "" &&
		strings.Contains(lower, strings.ToLower(session.Project.Name)) {
		return StrategyProject, r.manager.SearchByProject(ctx, session.Project.Name, maxStories)
	}

	return StrategySemantic, r.manager.Search(ctx, message, maxStories, nil)
}
