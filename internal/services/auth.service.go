package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medexpenses/internal/apperr"
	"medexpenses/internal/codec"
	"medexpenses/internal/models"
	"medexpenses/internal/repository"
)

const (
	MsgAuthenticated = "User authenticated."
	MsgWrongLogin    = "Wrong username or password."
)

type AuthResult struct {
	Authenticated bool
	Message       string
	Token         string
}

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (AuthResult, error)
}

type authService struct {
	store     repository.Store
	codec     *codec.Codec
	jwtSecret []byte
	jwtTTL    time.Duration
	now       func() time.Time
}

// NewAuthService returns an authenticator. An empty jwtSecret disables token
// issuance and only the message is returned.
func NewAuthService(store repository.Store, c *codec.Codec, jwtSecret string, jwtTTL time.Duration) AuthService {
	return &authService{
		store:     store,
		codec:     c,
		jwtSecret: []byte(jwtSecret),
		jwtTTL:    jwtTTL,
		now:       time.Now,
	}
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (AuthResult, error) {
	denied := AuthResult{Message: MsgWrongLogin}

	user, err := s.store.Users().FindByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return denied, nil
	}
	if err != nil {
		return AuthResult{}, err
	}

	ok, err := s.codec.MatchPassword(user.Password, password)
	if errors.Is(err, apperr.ErrDecryptionFailure) {
		// a stored value sealed under another key never matches
		return denied, nil
	}
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		return denied, nil
	}

	result := AuthResult{Authenticated: true, Message: MsgAuthenticated}
	if len(s.jwtSecret) > 0 {
		roles, err := loadRoleNames(ctx, s.store.Lookups())
		if err != nil {
			return AuthResult{}, err
		}
		if result.Token, err = s.issueToken(user, labelOr(roles, user.RoleID)); err != nil {
			return AuthResult{}, fmt.Errorf("could not generate token: %w", err)
		}
	}
	return result, nil
}

func (s *authService) issueToken(user *models.AppUser, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     role,
		"exp":      s.now().Add(s.jwtTTL).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}
