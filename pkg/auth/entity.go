package auth

import (
	"strings"

	"github.com/google/uuid"
)

// Owner is the single account allowed into the dashboard.
type Owner struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
}

var ownerNamespace = uuid.MustParse("6f1c2b1e-5d0a-4c4e-9a57-3f0b8e2d7c11")

// OwnerID is stable across restarts for the same email.
func OwnerID(email string) uuid.UUID {
	return uuid.NewSHA1(ownerNamespace, []byte(strings.ToLower(strings.TrimSpace(email))))
}
