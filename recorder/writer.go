package recorder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/musehq/muse-go-sdk/core"
)

// Writer turns an action event into a short narrative story suitable for
// embedding and later retrieval.
type Writer interface {
	WriteStory(ctx context.Context, event core.ActionEvent, session *core.SessionState) (string, error)
}

const storyWriterSystemPrompt = `You are a story writer that summarizes user actions in an app-building studio.
Write a single short paragraph, in the past tense, describing what the user did.
Mention the app/workflow stage, the action, the project name if known, and any
specific details from the action data. No headings, no lists, no commentary.`

// ClaudeWriter narrates events with a Claude model.
type ClaudeWriter struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// ClaudeWriterOption configures a ClaudeWriter.
type ClaudeWriterOption func(*ClaudeWriter)

// WithModel overrides the model used for story writing.
func WithModel(model string) ClaudeWriterOption {
	return func(w *ClaudeWriter) {
		w.model = model
	}
}

// NewClaudeWriter creates a writer over an Anthropic client.
func NewClaudeWriter(client *anthropic.Client, opts ...ClaudeWriterOption) *ClaudeWriter {
	w := &ClaudeWriter{
		client:    client,
		model:     "claude-sonnet-4-20250514",
		maxTokens: 512,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteStory asks Claude for a narrative paragraph about the event.
func (w *ClaudeWriter) WriteStory(ctx context.Context, event core.ActionEvent, session *core.SessionState) (string, error) {
	resp, err := w.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(w.model),
		MaxTokens: w.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: storyWriterSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(eventPrompt(event, session))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty story from model")
	}
	return text, nil
}

// eventPrompt renders the event and session context for the model. Data keys
// are sorted so the prompt is deterministic.
func eventPrompt(event core.ActionEvent, session *core.SessionState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "App: %s\nAction: %s\nTime: %s\n", event.AppName, event.Action, event.Timestamp)
	if session != nil && session.Project.Name != "" {
		fmt.Fprintf(&b, "Project: %s (%s)\n", session.Project.Name, session.Project.Category)
		if session.Project.Description != "" {
			fmt.Fprintf(&b, "Project description: %s\n", session.Project.Description)
		}
	}
	if len(event.Data) > 0 {
		b.WriteString("Action data:\n")
		keys := make([]string, 0, len(event.Data))
		for k := range event.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, event.Data[k])
		}
	}
	return b.String()
}

// TemplateWriter narrates events without any model call. It is the fallback
// when no API key is configured or the model call fails: the story is plain
// but still searchable.
type TemplateWriter struct{}

// WriteStory renders a one-sentence narrative from the event fields.
func (TemplateWriter) WriteStory(_ context.Context, event core.ActionEvent, session *core.SessionState) (string, error) {
	when := event.Timestamp
	if at, err := time.Parse(time.RFC3339, event.Timestamp); err == nil {
		when = at.Format("January 2, 2006 at 3:04 PM")
	}

	subject := "the " + event.AppName + " application"
	if session != nil && session.Project.Name != "" {
		subject = fmt.Sprintf("the %s project in the %s application", session.Project.Name, event.AppName)
	}
	return fmt.Sprintf("On %s, the user performed %s in %s. The action completed with the provided configuration.",
		when, event.Action, subject), nil
}
