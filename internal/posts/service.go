package posts

import (
	"context"
	"log/slog"
	"time"

	"github.com/jeremyjsx/blog/internal/events"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ListPosts returns every post, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]*Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*Post{}
	}
	return posts, nil
}

func (s *Service) GetPost(ctx context.Context, id string) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) CreatePost(ctx context.Context, in Input) (*Post, error) {
	f, err := Validate(in)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.Create(ctx, f, s.timestamp())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.TypePostCreated, post.payload()))
	return post, nil
}

// UpdatePost replaces title, body and author. The new updatedAt is always
// strictly after the previous one, even if the clock has not advanced.
func (s *Service) UpdatePost(ctx context.Context, id string, in Input) (*Post, error) {
	f, err := Validate(in)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	at := s.timestamp()
	if !at.After(current.UpdatedAt) {
		at = current.UpdatedAt.Add(time.Millisecond)
	}

	post, err := s.repo.Update(ctx, id, f, at)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.TypePostUpdated, post.payload()))
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.NewPostDeleted(id))
	return nil
}

// timestamp truncates to milliseconds, the coarsest precision of any backend.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publish event failed", "type", e.Type, "post_id", e.Payload.ID, "error", err)
	}
}
