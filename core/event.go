package core

// ActionEvent describes one completed workflow step, as reported by the
// application after a stage (ideation, code generation, image generation,
// email drafting) finishes. Events are the raw input to the memory recorder;
// they are narrated into stories before being indexed.
type ActionEvent struct {
	// AppName identifies the workflow stage (e.g. "ideation", "vibe_studio",
	// "design", "gmail").
	AppName string

	// Action is the operation performed (e.g. "generate_app", "create_image",
	// "draft_email").
	Action string

	// Timestamp is the RFC 3339 time the action happened.
	// Empty means "now" and is stamped by the recorder.
	Timestamp string

	// SessionID ties the event to a user session.
	SessionID string

	// UserID identifies the acting user.
	UserID string

	// Data carries action-specific details used when narrating the story.
	Data map[string]string
}
