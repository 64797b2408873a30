package outbox

import (
	"encoding/json"
	"time"
)

// SessionRef identifies which client session produced the event, so consumers
// can tell their own writes apart from other sessions'.
type SessionRef struct {
	SessionID string `json:"sessionId"`
	Origin    string `json:"origin,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Session    *SessionRef     `json:"session,omitempty"`
	Data       json.RawMessage `json:"data"`
}
