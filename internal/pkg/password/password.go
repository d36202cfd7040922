package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidHash is returned when the stored hash is not bcrypt output.
var ErrInvalidHash = errors.New("invalid password hash")

func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A mismatch is false, not
// an error; only a hash that bcrypt cannot parse is an error.
func Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}
