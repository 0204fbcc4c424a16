package recorder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musehq/muse-go-sdk/core"
	"github.com/musehq/muse-go-sdk/memory"
	"github.com/musehq/muse-go-sdk/memory/embedder/mock"
	"github.com/musehq/muse-go-sdk/memory/store/flat"
)

const dims = 64

func newTestRecorder(t *testing.T, writer Writer) (*Recorder, *memory.Manager) {
	t.Helper()
	store, err := flat.Open(t.TempDir(), dims)
	require.NoError(t, err)
	manager := memory.NewManager(store, mock.NewWithDimensions(dims), nil)
	return New(manager, writer), manager
}

// failingWriter simulates an unavailable narrative model.
type failingWriter struct{}

func (failingWriter) WriteStory(context.Context, core.ActionEvent, *core.SessionState) (string, error) {
	return "", errors.New("model unavailable")
}

func TestRecordAction(t *testing.T) {
	ctx := context.Background()
	r, manager := newTestRecorder(t, nil)

	session := &core.SessionState{
		ID: "sess-1",
		Project: core.Project{
			Name:     "TaskMaster",
			Category: "productivity",
		},
	}
	ok := r.RecordAction(ctx, core.ActionEvent{
		AppName:   "vibe_studio",
		Action:    "generate_app",
		SessionID: "sess-1",
		UserID:    "user-1",
	}, session)
	require.True(t, ok)

	results := manager.Search(ctx, "vibe_studio generate_app", 1, nil)
	require.Len(t, results, 1)
	meta := results[0].Metadata
	assert.Equal(t, "vibe_studio", meta.AppName)
	assert.Equal(t, "creation", meta.ActionType)
	assert.Equal(t, "TaskMaster", meta.ProjectName)
	assert.Equal(t, "productivity", meta.ProjectCategory)
	assert.NotEmpty(t, meta.StoryID)
	assert.NotEmpty(t, meta.Timestamp)
}

func TestRecordActionFallsBackOnWriterFailure(t *testing.T) {
	ctx := context.Background()
	r, manager := newTestRecorder(t, failingWriter{})

	ok := r.RecordAction(ctx, core.ActionEvent{
		AppName: "gmail",
		Action:  "draft_email",
	}, nil)
	require.True(t, ok, "writer failure must fall back, not fail the record")

	results := manager.Search(ctx, "draft_email gmail", 1, nil)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].StoryText, "draft_email")
	assert.Contains(t, results[0].StoryText, "gmail")
}

func TestRecordActionWithoutProject(t *testing.T) {
	ctx := context.Background()
	r, manager := newTestRecorder(t, nil)

	require.True(t, r.RecordAction(ctx, core.ActionEvent{
		AppName: "ideation",
		Action:  "generate_ideas",
	}, nil))

	results := manager.Search(ctx, "ideation", 1, nil)
	require.Len(t, results, 1)
	assert.Equal(t, "unknown_project", results[0].Metadata.ProjectName)
}

func TestTemplateWriter(t *testing.T) {
	at := time.Date(2026, time.August, 20, 15, 30, 0, 0, time.UTC)
	text, err := TemplateWriter{}.WriteStory(context.Background(), core.ActionEvent{
		AppName:   "design",
		Action:    "create_logo",
		Timestamp: at.Format(time.RFC3339),
	}, &core.SessionState{Project: core.Project{Name: "FitTracker"}})
	require.NoError(t, err)

	assert.Contains(t, text, "August 20, 2026")
	assert.Contains(t, text, "create_logo")
	assert.Contains(t, text, "FitTracker")
	assert.Contains(t, text, "design")
}

func TestContextForChatStrategies(t *testing.T) {
	ctx := context.Background()
	r, manager := newTestRecorder(t, nil)

	now := time.Now()
	manager.AddStory(ctx, "Built the TaskMaster app yesterday evening", memory.Metadata{
		ProjectName: "taskmaster",
		Timestamp:   now.Add(-20 * time.Hour).Format(time.RFC3339),
	})
	manager.AddStory(ctx, "Sketched MarketBasket shopping flows weeks back", memory.Metadata{
		ProjectName: "marketbasket",
		Timestamp:   now.AddDate(0, 0, -40).Format(time.RFC3339),
	})

	session := &core.SessionState{Project: core.Project{Name: "taskmaster"}}

	chat := r.ContextForChat(ctx, "what did I work on this week?", session, 5)
	assert.Equal(t, StrategyTimeframe, chat.Strategy)
	require.True(t, chat.HasContext())
	assert.Len(t, chat.Stories, 1) // the 40-day-old story is outside the window

	chat = r.ContextForChat(ctx, "tell me about taskmaster", session, 5)
	assert.Equal(t, StrategyProject, chat.Strategy)
	require.True(t, chat.HasContext())
	for _, s := range chat.Stories {
		assert.Equal(t, "taskmaster", s.Metadata.ProjectName)
	}

	chat = r.ContextForChat(ctx, "shopping flows", session, 5)
	assert.Equal(t, StrategySemantic, chat.Strategy)
	require.True(t, chat.HasContext())
	assert.Equal(t, "marketbasket", chat.Stories[0].Metadata.ProjectName)
}

func TestProjectTimeline(t *testing.T) {
	ctx := context.Background()
	r, manager := newTestRecorder(t, nil)

	now := time.Now()
	// Added newest first so chronological ordering has to come from the
	// timestamps, not insertion order.
	manager.AddStory(ctx, "Shipped the TaskMaster launch email for the project", memory.Metadata{
		ProjectName: "taskmaster",
		Timestamp:   now.Format(time.RFC3339),
	})
	manager.AddStory(ctx, "Generated the TaskMaster project app code", memory.Metadata{
		ProjectName: "taskmaster",
		Timestamp:   now.AddDate(0, 0, -3).Format(time.RFC3339),
	})
	manager.AddStory(ctx, "Sketched MarketBasket project flows", memory.Metadata{
		ProjectName: "marketbasket",
		Timestamp:   now.Format(time.RFC3339),
	})

	timeline := r.ProjectTimeline(ctx, "TaskMaster", 10)
	require.True(t, timeline.HasData())
	assert.Equal(t, "TaskMaster", timeline.ProjectName)
	require.Equal(t, 2, timeline.TotalActivities)
	require.Len(t, timeline.Activities, 2)
	assert.Contains(t, timeline.Activities[0].StoryText, "app code")
	assert.Contains(t, timeline.Activities[1].StoryText, "launch email")

	want := now.AddDate(0, 0, -3).Format(time.RFC3339)[:10] + " to " + now.Format(time.RFC3339)[:10]
	assert.Equal(t, want, timeline.DateRange)
}

func TestProjectTimelineEmptyProject(t *testing.T) {
	r, _ := newTestRecorder(t, nil)

	timeline := r.ProjectTimeline(context.Background(), "ghost", 10)
	assert.False(t, timeline.HasData())
	assert.Equal(t, 0, timeline.TotalActivities)
	assert.Empty(t, timeline.Activities)
	assert.Equal(t, "No activities found", timeline.DateRange)
}

func TestEventPromptIsDeterministic(t *testing.T) {
	event := core.ActionEvent{
		AppName: "gmail",
		Action:  "draft_email",
		Data: map[string]string{
			"subject":  "Launch day",
			"audience": "subscribers",
		},
	}
	first := eventPrompt(event, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, eventPrompt(event, nil))
	}
	assert.True(t, strings.Index(first, "audience") < strings.Index(first, "subject"))
}
