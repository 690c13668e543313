package posts

import (
	"time"

	"github.com/jeremyjsx/blog/internal/events"
)

const DefaultAuthor = "Anonymous"

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is a create or update request as it arrives on the wire. Nil fields
// were absent from the request body.
type Input struct {
	Title  *string `json:"title"`
	Body   *string `json:"body"`
	Author *string `json:"author"`
}

// Fields is a validated Input: trimmed, non-empty title and body, author defaulted.
type Fields struct {
	Title  string
	Body   string
	Author string
}

func (p *Post) payload() events.PostPayload {
	return events.PostPayload{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		Author:    p.Author,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
