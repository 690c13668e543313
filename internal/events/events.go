package events

import (
	"time"
)

const (
	TypePostCreated = "post.created"
	TypePostUpdated = "post.updated"
	TypePostDeleted = "post.deleted"
)

// PostPayload is a snapshot of the post at the time of the event. Deleted
// events only carry the ID.
type PostPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   PostPayload `json:"payload"`
}

func NewEvent(eventType string, payload PostPayload) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func NewPostDeleted(id string) Event {
	return NewEvent(TypePostDeleted, PostPayload{ID: id})
}
