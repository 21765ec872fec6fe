package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// AuthService logs in the configured operator and issues bearer tokens.
type AuthService struct {
	email        string
	passwordHash string
	tokenMgr     *auth.TokenManager
	logger       *zap.Logger
}

// NewAuthService builds the service. A plaintext operator password is
// hashed once at startup; a configured hash takes precedence.
func NewAuthService(cfg config.AuthConfig, logger *zap.Logger) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		email:    strings.ToLower(strings.TrimSpace(cfg.OperatorEmail)),
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		logger:   logger,
	}
	switch {
	case cfg.OperatorPasswordHash != "":
		s.passwordHash = cfg.OperatorPasswordHash
	case cfg.OperatorPassword != "":
		hash, err := auth.HashPassword(cfg.OperatorPassword, cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash operator password: %w", err)
		}
		s.passwordHash = hash
	default:
		if cfg.Enabled {
			logger.Warn("authentication enabled but no operator password configured; logins will fail")
		}
	}
	return s, nil
}

// Login checks the operator credentials and returns a signed token.
func (s *AuthService) Login(_ context.Context, email, password string) (string, time.Time, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", time.Time{}, errorutil.NewValidationError("email and password are required", nil)
	}
	if s.passwordHash == "" || !strings.EqualFold(strings.TrimSpace(email), s.email) {
		return "", time.Time{}, errorutil.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(s.passwordHash, password); err != nil {
		return "", time.Time{}, errorutil.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(s.email, auth.RoleOperator)
	if err != nil {
		return "", time.Time{}, errorutil.NewInternalError(err)
	}
	s.logger.Info("operator logged in", zap.String("email", s.email))
	return token, expiresAt, nil
}

// TokenManager exposes the token manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
