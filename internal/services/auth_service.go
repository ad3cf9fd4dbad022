package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"sales_backend/internal/logger"
	"sales_backend/internal/models"
	"sales_backend/internal/utils"
)

const usersTable = "users"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// UserStore is the slice of the query executor the auth flow needs.
type UserStore interface {
	Read(ctx context.Context, table, filterColumn string, filterValue any) ([]models.Record, error)
	Create(ctx context.Context, table string, payload any) (models.Record, error)
}

// TokenBlacklist stores revoked token ids until they expire.
type TokenBlacklist interface {
	Blacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	users     UserStore
	tokens    *utils.TokenIssuer
	blacklist TokenBlacklist
}

func NewAuthService(users UserStore, tokens *utils.TokenIssuer, blacklist TokenBlacklist) *AuthService {
	return &AuthService{users: users, tokens: tokens, blacklist: blacklist}
}

// Login checks the credentials against the users table and issues an
// access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *utils.Claims, error) {
	lookup := models.User{Email: email}
	lookup.Prepare()
	email = lookup.Email

	rows, err := s.users.Read(ctx, usersTable, "email", email)
	if err != nil {
		return "", nil, err
	}
	if len(rows) == 0 {
		return "", nil, ErrInvalidCredentials
	}
	user := models.UserFromRecord(rows[0])

	if err := utils.VerifyPassword(user.Password, password); err != nil {
		logger.From(ctx).Info("login rejected", logger.Email(email), logger.Err(err))
		return "", nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(strconv.FormatInt(user.ID, 10), user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, claims, nil
}

// Authenticate verifies the token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	return s.blacklist.Blacklist(ctx, claims.ID, claims.TTL(time.Now()))
}

// SeedUser creates a user with a hashed password. Empty arguments are
// replaced by random values. The stored (normalized) email and the plain
// password are returned.
func (s *AuthService) SeedUser(ctx context.Context, email, password string) (string, string, error) {
	if email == "" {
		suffix, err := utils.RandomString(6)
		if err != nil {
			return "", "", err
		}
		email = "user_" + suffix + "@example.com"
	}
	if password == "" {
		p, err := utils.RandomString(12)
		if err != nil {
			return "", "", err
		}
		password = p
	}

	hash, err := utils.Hash(password)
	if err != nil {
		return "", "", err
	}
	user := models.User{Email: email, Password: hash}
	user.Prepare()
	if _, err := s.users.Create(ctx, usersTable, user); err != nil {
		return "", "", fmt.Errorf("failed to create user: %w", err)
	}
	return user.Email, password, nil
}
