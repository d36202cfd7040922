package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"microblog/internal/domain"
	"microblog/internal/pkg/password"
	"microblog/internal/pkg/token"

	"gorm.io/gorm"
)

// Service contains all business logic for the session lifecycle: issuing
// token pairs, rotating refresh tokens, revocation and identity resolution.
type Service struct {
	users      UserStore
	ledger     RevocationLedger
	codec      TokenCodec
	pepper     string
	refreshTTL time.Duration
	failOpen   bool
	now        func() time.Time
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

func NewService(
	users UserStore,
	ledger RevocationLedger,
	codec TokenCodec,
	pepper string,
	refreshTTL time.Duration,
	failOpen bool,
) *Service {
	return &Service{
		users:      users,
		ledger:     ledger,
		codec:      codec,
		pepper:     pepper,
		refreshTTL: refreshTTL,
		failOpen:   failOpen,
		now:        time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	exists, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// loginDummyHash is compared against when the email is unknown, so the
// not-found branch costs the same bcrypt work as a wrong password.
var loginDummyHash, _ = password.Hash("microblog.invalid")

// Login verifies credentials and mints an access+refresh pair. A missing
// user and a wrong password both come back as ErrInvalidCredentials so the
// response never reveals whether the email is registered, and both paths
// pay one bcrypt comparison so timing does not reveal it either.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_, _ = password.Verify(req.Password, loginDummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, ErrUnavailable
	}

	ok, err := password.Verify(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	accessToken, err := s.codec.IssueAccess(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates the presented refresh token: the old token is revoked
// before the replacement pair is handed back, so a stolen-and-reused
// refresh token fails on its second use.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*RefreshResult, error) {
	hash := s.hashToken(refreshRaw)

	if err := s.checkNotRevoked(ctx, hash); err != nil {
		return nil, err
	}

	claims, err := s.codec.Verify(refreshRaw, token.KindRefresh)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, token.ErrMalformed
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountInvalid
		}
		return nil, ErrUnavailable
	}
	if !user.IsActive {
		return nil, ErrAccountInvalid
	}

	// Claim-then-issue. The conditional insert is the atomic step that
	// lets at most one of N concurrent refreshes of the same token win.
	claimed, err := s.ledger.Claim(ctx, hash, claims.ExpiresAt.Time)
	if err != nil {
		return nil, ErrUnavailable
	}
	if !claimed {
		return nil, ErrTokenRevoked
	}

	accessToken, err := s.codec.IssueAccess(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// Logout revokes the given token, access or refresh. It succeeds even for
// tokens that were already invalid so the caller learns nothing about
// revocation state.
func (s *Service) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	expiresAt, ok := s.codec.Expiry(raw)
	if !ok {
		// Unreadable exp: cap the record at the longest TTL we issue.
		expiresAt = s.now().Add(s.refreshTTL)
	}

	if err := s.ledger.Revoke(ctx, s.hashToken(raw), expiresAt); err != nil {
		if s.failOpen {
			log.Printf("revocation ledger unavailable on logout, continuing: %v", err)
			return nil
		}
		return ErrUnavailable
	}
	return nil
}

// ResolveIdentity validates an access token and resolves its subject.
func (s *Service) ResolveIdentity(ctx context.Context, accessRaw string) (*domain.User, error) {
	if err := s.checkNotRevoked(ctx, s.hashToken(accessRaw)); err != nil {
		return nil, err
	}

	claims, err := s.codec.Verify(accessRaw, token.KindAccess)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Tokens can outlive their subject.
			return nil, ErrUserNotFound
		}
		return nil, ErrUnavailable
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	user.PasswordHash = ""
	return user, nil
}

// RequireRole checks that the resolved identity carries the given role.
func (s *Service) RequireRole(user *domain.User, role domain.Role) error {
	if user == nil || user.Role != role {
		return ErrPermissionDenied
	}
	return nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// checkNotRevoked consults the ledger. A ledger outage is fail-closed
// unless the process was explicitly configured otherwise.
func (s *Service) checkNotRevoked(ctx context.Context, hash string) error {
	revoked, err := s.ledger.IsRevoked(ctx, hash)
	if err != nil {
		if s.failOpen {
			log.Printf("revocation ledger unavailable, failing open: %v", err)
			return nil
		}
		return ErrUnavailable
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func (s *Service) hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw + s.pepper))
	return hex.EncodeToString(sum[:])
}
