// Package mirror keeps a JSON snapshot of every post in object storage,
// driven by post events.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jeremyjsx/blog/internal/events"
	"github.com/jeremyjsx/blog/internal/storage"
)

const keyPrefix = "posts/"

var (
	// ErrUnknownEvent is returned by Apply for event types it does not handle.
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrMalformedEvent marks events that can never be applied.
	ErrMalformedEvent = errors.New("malformed event")
)

type Mirror struct {
	store  storage.Storage
	logger *slog.Logger
}

func New(store storage.Storage, logger *slog.Logger) *Mirror {
	return &Mirror{store: store, logger: logger}
}

// Key is the object key holding the snapshot of post id.
func Key(id string) string {
	return keyPrefix + id + ".json"
}

func (m *Mirror) Apply(ctx context.Context, e events.Event) error {
	if e.Payload.ID == "" {
		return fmt.Errorf("%w: %s without post id", ErrMalformedEvent, e.Type)
	}
	key := Key(e.Payload.ID)

	switch e.Type {
	case events.TypePostCreated, events.TypePostUpdated:
		data, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		if err := m.store.Upload(ctx, key, data, "application/json"); err != nil {
			return err
		}
		m.logger.Info("post snapshot written", "type", e.Type, "key", key)
		return nil
	case events.TypePostDeleted:
		if err := m.store.Delete(ctx, key); err != nil {
			return err
		}
		m.logger.Info("post snapshot removed", "key", key)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, e.Type)
	}
}
