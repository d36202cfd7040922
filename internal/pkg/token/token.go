package token

import (
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind tags the payload so an access token can never be replayed where a
// refresh token is expected and vice versa.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrExpired      = errors.New("token expired")
	ErrMalformed    = errors.New("token malformed")
	ErrKindMismatch = errors.New("token kind mismatch")
)

// Claims is the wire payload: sub, role (access only), kind, iat, exp, jti.
type Claims struct {
	Role string `json:"role,omitempty"`
	Kind Kind   `json:"kind"`
	jwtlib.RegisteredClaims
}

// UserID parses the sub claim back into a user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	return id, nil
}

// Codec signs and verifies access/refresh token pairs with a shared HS256
// key. TTLs come from configuration, the clock is injectable for tests.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func New(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// NewWithClock is New with an explicit time source.
func NewWithClock(secret string, accessTTL, refreshTTL time.Duration, now func() time.Time) *Codec {
	c := New(secret, accessTTL, refreshTTL)
	c.now = now
	return c
}

func (c *Codec) IssueAccess(userID int64, role string) (string, error) {
	return c.sign(Claims{
		Role: role,
		Kind: KindAccess,
	}, userID, c.accessTTL)
}

func (c *Codec) IssueRefresh(userID int64) (string, error) {
	return c.sign(Claims{
		Kind: KindRefresh,
	}, userID, c.refreshTTL)
}

func (c *Codec) sign(claims Claims, userID int64, ttl time.Duration) (string, error) {
	now := c.now()
	claims.RegisteredClaims = jwtlib.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature, expiry and kind. The three failure modes are
// distinct so callers can react differently (expired access -> client
// should refresh; wrong kind -> reject outright).
func (c *Codec) Verify(tokenStr string, expected Kind) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	if claims.Kind != expected {
		return nil, ErrKindMismatch
	}
	return claims, nil
}

// Expiry extracts the exp claim without trusting the signature. Used to
// mirror a token's own lifetime onto its revocation record.
func (c *Codec) Expiry(tokenStr string) (time.Time, bool) {
	parser := jwtlib.NewParser(jwtlib.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenStr, &Claims{})
	if err != nil {
		return time.Time{}, false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
