package service

import (
	"context"
	"errors"

	"github.com/Rrens/deskmap/internal/config"
	"github.com/Rrens/deskmap/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles admin authentication
type AuthService struct {
	cfg        config.AuthConfig
	jwtManager *security.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig, jwtManager *security.JWTManager) *AuthService {
	return &AuthService{cfg: cfg, jwtManager: jwtManager}
}

// Login verifies the admin credential and returns a session token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if s.cfg.AdminPasswordHash == "" {
		return "", errors.New("admin login is not configured")
	}
	if username != s.cfg.AdminUser {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(username)
	if err != nil {
		return "", err
	}
	return token, nil
}
