package jwtverifier

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/m-lab/tokenauth/static"
)

var hmacAlgorithms = map[string]bool{
	string(jose.HS256): true,
	string(jose.HS384): true,
	string(jose.HS512): true,
}

// HMACVerifier validates tokens signed with a shared secret. The secret is
// decoded once at construction and is never modified afterwards, so a single
// HMACVerifier may be used by concurrent requests.
type HMACVerifier struct {
	key    []byte
	leeway time.Duration
	now    func() time.Time
}

// Option configures an HMACVerifier.
type Option func(*HMACVerifier)

// WithLeeway sets the clock skew tolerated when checking time based claims.
func WithLeeway(d time.Duration) Option {
	return func(v *HMACVerifier) {
		v.leeway = d
	}
}

// WithClock overrides the time source used to check time based claims.
func WithClock(now func() time.Time) Option {
	return func(v *HMACVerifier) {
		v.now = now
	}
}

// NewHMAC creates a verifier from a base64 encoded signing secret.
func NewHMAC(secret string, opts ...Option) (*HMACVerifier, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return nil, err
	}
	v := &HMACVerifier{
		key:    key,
		leeway: static.DefaultLeeway,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// DecodeSecret decodes a base64 signing secret. Padded and unpadded forms of
// both the standard and URL alphabets are accepted.
func DecodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		key, err := enc.DecodeString(secret)
		if err == nil {
			if len(key) == 0 {
				return nil, fmt.Errorf("signing secret decodes to an empty key")
			}
			return key, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("signing secret is not valid base64: %w", lastErr)
}

// Verify checks the token signature and time claims, then extracts the subject
// and authorities.
func (v *HMACVerifier) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse token: %v", ErrInvalidToken, err)
	}
	if len(parsed.Headers) != 1 || !hmacAlgorithms[parsed.Headers[0].Algorithm] {
		return nil, fmt.Errorf("%w: unsupported signature algorithm", ErrInvalidToken)
	}

	var std jwt.Claims
	var raw map[string]interface{}
	if err := parsed.Claims(v.key, &std, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := validateTime(&std, v.now(), v.leeway); err != nil {
		return nil, err
	}
	return claimsFrom(&std, raw)
}

// Mode returns the verification mode name.
func (v *HMACVerifier) Mode() string {
	return "hmac"
}
