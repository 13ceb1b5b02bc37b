package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bryanwahyu/fracture-ai/internal/application"
	domain "github.com/bryanwahyu/fracture-ai/internal/domain/users"
)

// Service handles account registration, login and token verification.
type Service struct {
	Users    domain.Repository
	Secret   []byte
	TokenTTL time.Duration
	Clock    application.Clock
}

// Register buat akun baru, langsung balikin token supaya user langsung login.
func (s *Service) Register(ctx context.Context, fullName, username, email, password string) (string, error) {
	fullName = strings.TrimSpace(fullName)
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || username == "" || email == "" || password == "" {
		return "", errors.New("full name, username, email and password are required")
	}

	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	u := &domain.User{
		ID:           uuid.New().String(),
		FullName:     fullName,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.Clock.Now(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return "", err
	}

	return s.issueToken(u)
}

// Login verifikasi credentials, balikin JWT.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.issueToken(u)
}

// VerifyToken parses a bearer token and returns the user ID it carries.
func (s *Service) VerifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidCredentials
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrInvalidCredentials
	}
	return sub, nil
}

func (s *Service) issueToken(u *domain.User) (string, error) {
	now := s.Clock.Now()
	claims := jwt.MapClaims{
		"sub": u.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}
