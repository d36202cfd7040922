package repository

import (
	"context"

	"microblog/internal/domain"

	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	var p domain.Post
	tx := r.db.WithContext(ctx).First(&p, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &p, nil
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	var posts []domain.Post
	tx := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return posts, nil
}

func (r *PostRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error) {
	var posts []domain.Post
	tx := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&posts)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Post{}, id).Error
}
