// Package recorder connects the application's workflow to the memory
// subsystem. After each workflow step the application reports an
// ActionEvent; the recorder narrates it into a story and stores it. Before
// generating a chat response the application asks for context; the recorder
// picks a retrieval strategy and queries memory.
//
// Everything here degrades gracefully: a failed story model falls back to a
// template narrative, and a failed memory lookup yields empty context, never
// an error that would block the primary user interaction.
package recorder

import (
	"context"
	"log"
	"time"

	"github.com/musehq/muse-go-sdk/core"
	"github.com/musehq/muse-go-sdk/memory"
)

// Recorder records app actions as stories and retrieves chat context.
type Recorder struct {
	manager *memory.Manager
	writer  Writer
}

// New creates a Recorder. A nil writer means TemplateWriter.
func New(manager *memory.Manager, writer Writer) *Recorder {
	if writer == nil {
		writer = TemplateWriter{}
	}
	return &Recorder{manager: manager, writer: writer}
}

// RecordAction narrates an event and stores it as a story. It returns false
// only when the story could not be stored; a failed narrative model is not
// fatal, the template fallback is used instead.
func (r *Recorder) RecordAction(ctx context.Context, event core.ActionEvent, session *core.SessionState) bool {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().Format(time.RFC3339)
	}
	log.Printf("[RECORDER] Recording action %s.%s", event.AppName, event.Action)

	text, err := r.writer.WriteStory(ctx, event, session)
	if err != nil || text == "" {
		log.Printf("[RECORDER] Story writer failed, using fallback narrative: %v", err)
		text, _ = TemplateWriter{}.WriteStory(ctx, event, session)
	}

	return r.manager.AddStory(ctx, text, buildMetadata(event, session))
}

// buildMetadata assembles story metadata from the event and the session's
// current project.
func buildMetadata(event core.ActionEvent, session *core.SessionState) memory.Metadata {
	meta := memory.Metadata{
		AppName:         event.AppName,
		Action:          event.Action,
		ActionType:      memory.ClassifyAction(event.Action),
		Timestamp:       event.Timestamp,
		SessionID:       event.SessionID,
		UserID:          event.UserID,
		ProjectName:     "unknown_project",
		ProjectCategory: "unknown",
	}
	if session != nil && session.Project.Name != "" {
		meta.ProjectName = session.Project.Name
		meta.ProjectCategory = session.Project.Category
	}
	return meta
}
