package services

import (
	"context"
	"log/slog"

	"github.com/mblog/apiserver/internal/mq"
	"github.com/mblog/apiserver/types"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Post, int, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Patch(ctx context.Context, id int, patch types.PostPatch) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// PostService encapsulates post use-cases.
type PostService struct {
	repo   PostRepository
	bus    *mq.Bus
	logger *slog.Logger
}

func NewPostService(repo PostRepository, bus *mq.Bus, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{repo: repo, bus: bus, logger: logger}
}

// List returns a page of posts in creation order.
func (s *PostService) List(ctx context.Context, offset, limit int) ([]types.Post, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *PostService) Create(ctx context.Context, post types.Post) (types.Post, error) {
	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return types.Post{}, err
	}
	publishEvent(ctx, s.bus, s.logger, postEventsChannel, map[string]any{
		"type":    "post.created",
		"post_id": created.ID,
	})
	return created, nil
}

// Update applies only the fields supplied in patch.
func (s *PostService) Update(ctx context.Context, id int, patch types.PostPatch) (types.Post, error) {
	return s.repo.Patch(ctx, id, patch)
}

func (s *PostService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	publishEvent(ctx, s.bus, s.logger, postEventsChannel, map[string]any{
		"type":    "post.deleted",
		"post_id": id,
	})
	return nil
}
