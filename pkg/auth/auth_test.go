package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubTokens struct{ calls int }

func (s *stubTokens) Generate(_ context.Context, o Owner) (string, error) {
	s.calls++
	return "token-" + o.Email, nil
}

func TestNewOwner_HashesPlainPassword(t *testing.T) {
	o, err := NewOwner(" Me@Example.com ", "s3cret", "")
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", o.Email)
	assert.Equal(t, OwnerID("ME@example.com"), o.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte("s3cret")))
}

func TestNewOwner_PrefersHash(t *testing.T) {
	o, err := NewOwner("me@example.com", "ignored", "$2a$10$abc")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$abc", o.PasswordHash)

	_, err = NewOwner("me@example.com", "", "")
	assert.ErrorIs(t, err, ErrOwnerNotConfigured)
}

func TestLogin(t *testing.T) {
	o, err := NewOwner("me@example.com", "s3cret", "")
	require.NoError(t, err)
	tokens := &stubTokens{}
	svc := NewAuthService(o, tokens)

	res, err := svc.Login(context.Background(), "ME@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "token-me@example.com", res.Token)
	assert.Equal(t, o.ID, res.Owner.ID)

	_, err = svc.Login(context.Background(), "me@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "other@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, tokens.calls)
}
