package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/auth"
	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService registers accounts and issues access tokens.
type AuthService struct {
	userRepo  domain.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domain.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL == 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// AuthResult carries the signed token and the account it belongs to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates a customer account. Email addresses are unique,
// case-insensitive.
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, domain.NewValidationError("name and email are required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, &domain.PolicyError{Reason: "an account with this email already exists"}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, &domain.ValidationError{Msg: err.Error()}
		}
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(user)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.PolicyError{Reason: "invalid email or password"}
		}
		return nil, err
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, &domain.PolicyError{Reason: "invalid email or password"}
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	now := time.Now().UTC()
	claims := &domain.KitchenClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
