// Package signer issues and verifies redemption credentials. A credential
// binds a claim to its deal and consumer with an HMAC-SHA256 tag, so a code
// presented at redemption time can be checked without trusting the client.
//
// The signing secret is resolved once through a SecretProvider and cached for
// the process lifetime. A failed fetch is fatal for every subsequent Sign and
// Verify call (fail closed): the signer never falls back to an empty key.
package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Separator joins the payload components and the redemption code parts.
const Separator = ":"

// ErrSecretUnavailable is returned by Sign and Verify when the secret could
// not be fetched. Every call fails with it once the fetch has failed.
var ErrSecretUnavailable = errors.New("signing secret unavailable")

// ErrMalformedCode is returned by ParseRedemptionCode for inputs that do not
// split into a claim identifier and a token.
var ErrMalformedCode = errors.New("malformed redemption code")

// SecretProvider resolves a named secret. Implementations may hit a file, an
// environment variable, or a remote secret manager; the signer calls it at
// most once.
type SecretProvider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SecretProviderFunc adapts a function to the SecretProvider interface.
type SecretProviderFunc func(ctx context.Context, name string) (string, error)

// GetSecret implements SecretProvider.
func (f SecretProviderFunc) GetSecret(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// EnvSecret returns a provider that reads the secret from a fixed string,
// typically sourced from configuration at startup. An empty value is an error.
func EnvSecret(value string) SecretProvider {
	return SecretProviderFunc(func(ctx context.Context, name string) (string, error) {
		if value == "" {
			return "", fmt.Errorf("secret %q is empty", name)
		}
		return value, nil
	})
}

// Signer produces and verifies HMAC-SHA256 tags over a claim/deal/consumer
// triple. Safe for concurrent use.
type Signer struct {
	provider   SecretProvider
	secretName string

	once   sync.Once
	secret []byte
	err    error
}

// New builds a Signer that resolves secretName through the provider on first
// use.
func New(provider SecretProvider, secretName string) *Signer {
	return &Signer{provider: provider, secretName: secretName}
}

func (s *Signer) key(ctx context.Context) ([]byte, error) {
	s.once.Do(func() {
		val, err := s.provider.GetSecret(ctx, s.secretName)
		if err != nil {
			s.err = fmt.Errorf("%w: %v", ErrSecretUnavailable, err)
			return
		}
		if val == "" {
			s.err = ErrSecretUnavailable
			return
		}
		s.secret = []byte(val)
	})
	if s.err != nil {
		return nil, s.err
	}
	return s.secret, nil
}

// payload builds the canonical signed message.
func payload(claimID, dealID, consumerID string) string {
	return claimID + Separator + dealID + Separator + consumerID
}

// Sign derives the hex-encoded authentication tag for the triple. The tag is
// deterministic: the same inputs and secret always produce the same token.
func (s *Signer) Sign(ctx context.Context, claimID, dealID, consumerID string) (string, error) {
	key, err := s.key(ctx)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload(claimID, dealID, consumerID)))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the tag for the triple and compares it with the provided
// token in constant time. A secret fetch failure propagates as an error; a
// plain mismatch returns (false, nil).
func (s *Signer) Verify(ctx context.Context, claimID, dealID, consumerID, token string) (bool, error) {
	want, err := s.Sign(ctx, claimID, dealID, consumerID)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(want), []byte(token)), nil
}

// RedemptionCode assembles the consumer-facing credential. It carries only
// the claim identifier and the tag; deal and consumer identifiers are looked
// up server-side at redemption time.
func RedemptionCode(claimID, token string) string {
	return claimID + Separator + token
}

// ParseRedemptionCode splits a credential into claim identifier and token.
// The token itself may not contain the separator (hex never does), so the
// split is on the first occurrence.
func ParseRedemptionCode(code string) (claimID, token string, err error) {
	idx := strings.Index(code, Separator)
	if idx <= 0 || idx == len(code)-1 {
		return "", "", ErrMalformedCode
	}
	return code[:idx], code[idx+1:], nil
}
