package posts

import (
	"context"

	"microblog/internal/domain"
)

// PostStore — only the methods the posts service uses
type PostStore interface {
	Create(ctx context.Context, p *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, limit, offset int) ([]domain.Post, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error)
	Update(ctx context.Context, p *domain.Post) error
	Delete(ctx context.Context, id int64) error
}
