package posts

import (
	"context"
	"time"
)

// Repository is implemented by each storage backend. Backends generate IDs and
// report malformed ones as ErrInvalidID; timestamps are supplied by the caller.
type Repository interface {
	List(ctx context.Context) ([]*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, f Fields, at time.Time) (*Post, error)
	Update(ctx context.Context, id string, f Fields, at time.Time) (*Post, error)
	Delete(ctx context.Context, id string) error
}

// IDCanonicalizer is implemented by backends whose id parser accepts more than
// one spelling of the same id, such as upper-case hex.
type IDCanonicalizer interface {
	CanonicalID(id string) (string, error)
}

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
