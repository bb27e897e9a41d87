// Package events defines the WebSocket broadcast event types for C9: what
// gets fanned out to /api/ws subscribers, distinct from the action-log
// entries those same operations also produce.
package events

import "time"

// Event is one broadcast message. Type selects how Data should be decoded
// client side; Timestamp is assigned at broadcast time.
type Event struct {
	Timestamp string      `json:"timestamp"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
}

// newEvent stamps the current time in RFC3339Nano, matching the
// action-log's own timestamp format so UI clients can correlate the two
// streams without a format conversion.
func newEvent(eventType string, data interface{}) *Event {
	return &Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Type:      eventType,
		Data:      data,
	}
}

// Broadcast event type constants.
const (
	TypeBrowserLaunched = "browser.launched"
	TypeBrowserKilled   = "browser.killed"
	TypeBrowserCrashed  = "browser.crashed"

	TypeActionLogEntry = "action_log.entry"

	TypeProfileCreated = "profile.created"
	TypeProfileUpdated = "profile.updated"
	TypeProfileDeleted = "profile.deleted"

	TypeHeartbeat = "heartbeat"
)

// BrowserStatusPayload is the Data shape for browser.* events.
type BrowserStatusPayload struct {
	ProfileID string `json:"profile_id"`
	PID       int    `json:"pid,omitempty"`
	CDPPort   int    `json:"cdp_port,omitempty"`
}

// NewBrowserLaunchedEvent reports a successful launch-or-attach.
func NewBrowserLaunchedEvent(profileID string, pid, cdpPort int) *Event {
	return newEvent(TypeBrowserLaunched, BrowserStatusPayload{ProfileID: profileID, PID: pid, CDPPort: cdpPort})
}

// NewBrowserKilledEvent reports an explicit kill or a sweep removal.
func NewBrowserKilledEvent(profileID string) *Event {
	return newEvent(TypeBrowserKilled, BrowserStatusPayload{ProfileID: profileID})
}

// NewBrowserCrashedEvent reports a transport disconnect the sweep hasn't
// caught up to yet.
func NewBrowserCrashedEvent(profileID string) *Event {
	return newEvent(TypeBrowserCrashed, BrowserStatusPayload{ProfileID: profileID})
}

// NewActionLogEvent wraps an action-log entry for broadcast; entry is
// typed as interface{} here to avoid an import cycle with the actionlog
// package, which itself does not need to know about events.
func NewActionLogEvent(entry interface{}) *Event {
	return newEvent(TypeActionLogEntry, entry)
}

// ProfileChangePayload is the Data shape for profile.* events.
type ProfileChangePayload struct {
	ProfileID string `json:"profile_id"`
}

func NewProfileCreatedEvent(profileID string) *Event {
	return newEvent(TypeProfileCreated, ProfileChangePayload{ProfileID: profileID})
}

func NewProfileUpdatedEvent(profileID string) *Event {
	return newEvent(TypeProfileUpdated, ProfileChangePayload{ProfileID: profileID})
}

func NewProfileDeletedEvent(profileID string) *Event {
	return newEvent(TypeProfileDeleted, ProfileChangePayload{ProfileID: profileID})
}

// NewHeartbeatEvent is sent every 30s to every /api/ws subscriber.
func NewHeartbeatEvent() *Event {
	return newEvent(TypeHeartbeat, nil)
}
