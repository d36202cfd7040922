package domain

import "time"

// RevokedToken records a token that must be rejected before its natural
// expiry (logout, refresh rotation).
//
// Security notes:
// - We never store the raw token, only its SHA-256 hash (TokenHash).
// - ExpiresAt mirrors the token's own exp claim, so once the signature
//   check would reject the token anyway the record can be deleted.
type RevokedToken struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	TokenHash string `json:"-" gorm:"size:64;uniqueIndex;not null"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}
