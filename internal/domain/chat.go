package domain

import "time"

// StoredChat is one persisted turn snapshot for a session. Rows are
// append-only; the latest row for a session holds the full transcript.
type StoredChat struct {
	SessionID string     `json:"session_id"`
	History   Transcript `json:"history"`
	CreatedAt time.Time  `json:"created_at"`
}
