package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TokenType is the OAuth2 token_type reported to clients.
const TokenType = "bearer"

// Token is the result of a successful login.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	ExpiresIn   int // seconds
}

// ServiceConfig configures token signing and password hashing.
type ServiceConfig struct {
	Secret   string
	TokenTTL time.Duration
	Params   Params
}

// Service registers accounts, exchanges credentials for tokens and resolves
// tokens back to users. It holds no mutable state.
type Service struct {
	users  UserRepository
	hasher *Hasher
	secret string
	ttl    time.Duration

	// dummyHash is verified when the email is unknown so that both login
	// failure paths cost one Argon2id evaluation.
	dummyHash string
}

// NewService creates a Service. A zero Params uses DefaultParams.
func NewService(users UserRepository, cfg ServiceConfig) (*Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("auth service: empty signing secret")
	}
	params := cfg.Params
	if params == (Params{}) {
		params = DefaultParams
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	hasher := NewHasher(params)
	dummy, err := hasher.Hash("babylog-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	return &Service{
		users:     users,
		hasher:    hasher,
		secret:    cfg.Secret,
		ttl:       ttl,
		dummyHash: dummy,
	}, nil
}

// Register creates an account. Returns ErrEmailExists if the email is taken.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues an access token.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash) //nolint:errcheck // timing only
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	signed, expiresAt, err := IssueToken(user, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
		ExpiresIn:   int(s.ttl.Seconds()),
	}, nil
}

// Authenticate verifies tokenString and loads the user it names.
// A valid token whose account no longer exists fails with ErrTokenInvalid.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*User, error) {
	claims, err := VerifyToken(tokenString, s.secret)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", ErrTokenInvalid)
		}
		return nil, fmt.Errorf("resolving token subject: %w", err)
	}
	return user, nil
}

// GetUser returns the account with id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}
