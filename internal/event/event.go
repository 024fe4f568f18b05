package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeUserRegistered      Type = "user.registered"
	TypeUserLoggedIn        Type = "user.logged_in"
	TypeUserLoggedOut       Type = "user.logged_out"
	TypeUserUpdated         Type = "user.updated"
	TypeVideoPublished      Type = "video.published"
	TypeVideoUpdated        Type = "video.updated"
	TypeVideoDeleted        Type = "video.deleted"
	TypeVideoPublishToggled Type = "video.publish_toggled"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actorId,omitempty"`
}

// New stamps an event with a fresh id and the current UTC time.
func New(t Type, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		ActorID:   actorID,
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
