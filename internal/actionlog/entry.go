// Package actionlog implements C9: the bounded in-memory ring of recent
// operations plus the day-sharded append-only JSONL record of every
// operation ever run, as required for audit and debugging of a long-lived
// browser automation service.
package actionlog

import "time"

// Entry is one completed HTTP/MCP operation.
type Entry struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	ProfileID  string    `json:"profile_id,omitempty"`
	Operation  string    `json:"operation"`
	DurationMS int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// New builds an Entry from the boundaries of a completed operation.
func New(profileID, operation string, started, finished time.Time, err error) Entry {
	e := Entry{
		StartedAt:  started,
		FinishedAt: finished,
		ProfileID:  profileID,
		Operation:  operation,
		DurationMS: finished.Sub(started).Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
