// internal/services/auth_service.go
package services

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nexpoint/nexpoint-backend/internal/config"
	"github.com/nexpoint/nexpoint-backend/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService checks the static admin credential and issues a session token.
// The admin surface has exactly one principal; there is no user store.
type AuthService struct {
	config *config.Config
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

// Login validates the credential and returns a signed JWT on success.
func (s *AuthService) Login(req *LoginRequest) (string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	admin := s.config.Admin
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(admin.Username)) == 1

	var passwordOK bool
	if admin.PasswordHash != "" {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) == nil
	} else {
		passwordOK = subtle.ConstantTimeCompare([]byte(req.Password), []byte(admin.Password)) == 1
	}

	if !usernameOK || !passwordOK {
		return "", ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(admin.Username, s.config.JWT.AccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}
