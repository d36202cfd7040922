package repository

import (
	"context"
	"errors"
	"time"

	"microblog/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevokedTokenRepository is the revocation ledger. The unique index on
// token_hash makes Claim a single conditional insert, which is what keeps
// two concurrent refreshes of the same token from both succeeding.
type RevokedTokenRepository struct {
	db *gorm.DB
}

func NewRevokedTokenRepository(db *gorm.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

// Revoke records the token hash. Revoking an already-revoked token is a
// no-op, not an error.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, hash string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoNothing: true,
		}).
		Create(&domain.RevokedToken{TokenHash: hash, ExpiresAt: expiresAt}).Error
}

// Claim revokes the token hash and reports whether this caller was the one
// to do it. A false return means somebody else revoked it first.
func (r *RevokedTokenRepository) Claim(ctx context.Context, hash string, expiresAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoNothing: true,
		}).
		Create(&domain.RevokedToken{TokenHash: hash, ExpiresAt: expiresAt})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, hash string) (bool, error) {
	var t domain.RevokedToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteExpired sweeps records whose mirrored expiry has passed. Safe at
// any time: a token past its exp is rejected by signature checks anyway.
func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.RevokedToken{})
	return tx.RowsAffected, tx.Error
}
