package session

import "time"

// CreateRequest defines payload for creating a new session. Voices lists
// the synthesis voice names available in the client environment; the
// server resolves per-persona preferences against it.
type CreateRequest struct {
	Label  string   `json:"label"`
	Voices []string `json:"voices"`
}

// CreateResponse returns created session metadata.
type CreateResponse struct {
	SessionID       string    `json:"session_id"`
	Label           string    `json:"label"`
	Status          Status    `json:"status"`
	MaxLoopDepth    int       `json:"max_loop_depth"`
	StartedAt       time.Time `json:"started_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	InactivityTTLMS int64     `json:"inactivity_ttl_ms"`
}
