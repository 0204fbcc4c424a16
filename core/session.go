package core

import "time"

// Project is the app idea a session is building. Its name scopes
// project-level memory queries.
type Project struct {
	Name        string
	Category    string
	Description string
}

// SessionState is the per-session context the application accumulates while
// the user moves through the workflow. It is ephemeral: sessions live in a
// session.Store with a TTL and have no persistence contract, unlike the
// durable memory store.
type SessionState struct {
	ID         string
	UserID     string
	CreatedAt  time.Time
	LastActive time.Time

	// Project is the current app idea, filled in once ideation completes.
	Project Project

	// Extra holds application-defined annotations.
	Extra map[string]string
}
