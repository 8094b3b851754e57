package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	defaultAccessTTL  = 10 * time.Minute
	defaultRefreshTTL = 60 * time.Minute
)

// Service composes credential verification, token issuance and identity
// resolution. It holds no mutable state beyond its collaborators, so
// concurrent requests may use it freely.
type Service struct {
	users      UserStore
	codec      *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.accessTTL = ttl
		}
		return nil
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
		return nil
	}
}

// NewService constructs Service with optional configuration.
func NewService(users UserStore, codec *TokenCodec, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("auth: user store is required")
	}
	if codec == nil {
		return nil, errors.New("auth: token codec is required")
	}
	svc := &Service{
		users:      users,
		codec:      codec,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// AccessTTL reports the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// Authenticate verifies login credentials. Unknown email and wrong password
// produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrIncorrectCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrIncorrectCredentials
		}
		return nil, err
	}
	if err := VerifyPassword(strings.TrimSpace(user.PasswordHash), password); err != nil {
		return nil, ErrIncorrectCredentials
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return user, nil
}

// ResolveActive loads the named user and checks liveness. Every authenticated
// request runs through this, not just login: a user deactivated mid-session
// is rejected on their next request even with a still-valid token.
func (s *Service) ResolveActive(ctx context.Context, name string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return user, nil
}

// IssueTokens mints an access/refresh pair for the user. Both are stateless
// signed tokens; expiry is the only invalidation mechanism.
func (s *Service) IssueTokens(user *User) (TokenPair, error) {
	accessToken, accessExp, err := s.codec.Issue(user.Name, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, refreshExp, err := s.codec.Issue(user.Name, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyRequest validates a bearer token against the claimed identity and
// resolves the live principal behind it.
func (s *Service) VerifyRequest(ctx context.Context, token, claimedName string) (*User, error) {
	if _, err := s.codec.Decode(token, claimedName); err != nil {
		return nil, err
	}
	return s.ResolveActive(ctx, claimedName)
}

// Refresh validates a refresh token for the claimed identity and issues a
// fresh access token. Permission evaluation is not run here; it happens per
// protected call.
func (s *Service) Refresh(ctx context.Context, refreshToken, claimedName string) (string, time.Time, *User, error) {
	if _, err := s.codec.Decode(refreshToken, claimedName); err != nil {
		return "", time.Time{}, nil, err
	}
	user, err := s.ResolveActive(ctx, claimedName)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	accessToken, expiresAt, err := s.codec.Issue(user.Name, s.accessTTL)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return accessToken, expiresAt, user, nil
}

// UpdatePassword re-hashes and stores a new password for the named user.
func (s *Service) UpdatePassword(ctx context.Context, name, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, name, hash)
}
