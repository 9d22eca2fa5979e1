package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	jwtMiddleware "github.com/samirwankhede/roomstats/internal/middleware"
)

const DefaultTokenTTL = 12 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoAdminPassword    = errors.New("admin password not configured")
)

// AuthService exchanges the operator password for an admin JWT. Only the bcrypt hash of
// the password is kept in memory.
type AuthService struct {
	log    *zap.Logger
	hash   []byte
	secret string
	ttl    time.Duration
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

func NewAuthService(log *zap.Logger, adminPassword, secret string, ttl time.Duration) (*AuthService, error) {
	if adminPassword == "" {
		return nil, ErrNoAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{log: log, hash: hash, secret: secret, ttl: ttl}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(req.Password)); err != nil {
		s.log.Warn("admin login rejected")
		return nil, ErrInvalidCredentials
	}

	expires := time.Now().Add(s.ttl)
	token, err := jwtMiddleware.Issue(s.secret, jwtMiddleware.AdminSubject, true, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{Token: token, Expires: expires}, nil
}
