package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, now *time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec("test-secret", "HS256", "poly", "poly",
		WithCodecClock(func() time.Time { return *now }))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	token, expiresAt, err := codec.Issue("aung", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if got, want := expiresAt, now.Add(10*time.Minute); !got.Equal(want) {
		t.Fatalf("expiry = %v, want %v", got, want)
	}

	claims, err := codec.Decode(token, "aung")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Subject != "aung" {
		t.Fatalf("subject = %q, want aung", claims.Subject)
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	token, _, err := codec.Issue("aung", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now = now.Add(11 * time.Minute)
	if _, err := codec.Decode(token, "aung"); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenSubjectCrossCheck(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	// A valid token for one user must not pass while the request claims to
	// be another user's session.
	token, _, err := codec.Issue("aung", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Decode(token, "thiri"); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims, got %v", err)
	}
}

func TestTokenAudienceIssuerMismatch(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	other, err := NewTokenCodec("test-secret", "HS256", "other-aud", "poly",
		WithCodecClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	token, _, err := other.Issue("aung", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Decode(token, "aung"); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims for audience mismatch, got %v", err)
	}

	otherIss, err := NewTokenCodec("test-secret", "HS256", "poly", "other-iss",
		WithCodecClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	token, _, err = otherIss.Issue("aung", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Decode(token, "aung"); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims for issuer mismatch, got %v", err)
	}
}

func TestTamperedTokenFails(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	token, _, err := codec.Issue("aung", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := codec.Decode(tampered, "aung"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeEmptyToken(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, &now)

	if _, err := codec.Decode("", "aung"); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}

func TestNewTokenCodecRejectsBadConfig(t *testing.T) {
	if _, err := NewTokenCodec("", "HS256", "poly", "poly"); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokenCodec("secret", "RS256", "poly", "poly"); err == nil {
		t.Fatal("expected error for non-HMAC algorithm")
	}
	if _, err := NewTokenCodec("secret", "nope", "poly", "poly"); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
