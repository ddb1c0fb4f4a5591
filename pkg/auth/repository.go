package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOwnerNotConfigured = errors.New("owner password is not configured")
)

// NewOwner builds the owner account from configuration. A ready bcrypt hash
// wins over a plain password; the plain one is hashed once here.
func NewOwner(email, password, passwordHash string) (Owner, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Owner{}, errors.New("owner email is required")
	}
	hash := strings.TrimSpace(passwordHash)
	if hash == "" {
		if password == "" {
			return Owner{}, ErrOwnerNotConfigured
		}
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return Owner{}, err
		}
		hash = string(b)
	}
	return Owner{ID: OwnerID(email), Email: email, PasswordHash: hash}, nil
}
