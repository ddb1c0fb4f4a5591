package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AuthUseCase describes dashboard login.
type AuthUseCase interface {
	Login(ctx context.Context, email, password string) (AuthResult, error)
}

type AuthResult struct {
	Owner Owner
	Token string
}

type authService struct {
	owner  Owner
	tokens TokenGenerator
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(owner Owner, tokens TokenGenerator) AuthUseCase {
	return &authService{owner: owner, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !strings.EqualFold(strings.TrimSpace(email), s.owner.Email) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(s.owner.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, s.owner)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Owner: s.owner, Token: token}, nil
}
