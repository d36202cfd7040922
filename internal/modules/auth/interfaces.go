package auth

import (
	"context"
	"time"

	"microblog/internal/domain"
	"microblog/internal/pkg/token"
)

// UserStore — only the methods the session service uses
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// RevocationLedger — storage for revoked token hashes
type RevocationLedger interface {
	Revoke(ctx context.Context, hash string, expiresAt time.Time) error
	Claim(ctx context.Context, hash string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, hash string) (bool, error)
}

// TokenCodec — signs and verifies the access/refresh pair
type TokenCodec interface {
	IssueAccess(userID int64, role string) (string, error)
	IssueRefresh(userID int64) (string, error)
	Verify(tokenStr string, expected token.Kind) (*token.Claims, error)
	Expiry(tokenStr string) (time.Time, bool)
}

// IdentityResolver is what the HTTP middleware needs from this module.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (*domain.User, error)
}
