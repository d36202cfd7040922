package posts

import (
	"context"
	"errors"
	"strings"

	"microblog/internal/domain"

	"gorm.io/gorm"
)

const defaultListLimit = 50

// Service contains the posts business logic. Mutations are restricted to
// the owner; admins may edit or delete anything.
type Service struct {
	posts PostStore
}

func NewService(posts PostStore) *Service {
	return &Service{posts: posts}
}

func (s *Service) Create(ctx context.Context, owner *domain.User, req CreatePostRequest) (*domain.Post, error) {
	post := &domain.Post{
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		OwnerID: owner.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.posts.List(ctx, limit, offset)
}

func (s *Service) ListMine(ctx context.Context, owner *domain.User) ([]domain.Post, error) {
	return s.posts.ListByOwner(ctx, owner.ID)
}

func (s *Service) Update(ctx context.Context, actor *domain.User, id int64, req UpdatePostRequest) (*domain.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotOwner
	}

	if req.Title != "" {
		post.Title = strings.TrimSpace(req.Title)
	}
	if req.Content != "" {
		post.Content = req.Content
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) Delete(ctx context.Context, actor *domain.User, id int64) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrNotOwner
	}
	return s.posts.Delete(ctx, post.ID)
}
