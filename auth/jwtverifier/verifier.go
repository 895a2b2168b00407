// Package jwtverifier verifies signed bearer tokens and derives the claims
// needed to build an authenticated principal.
//
// The package supports two modes:
//   - HMAC: verify the token signature with a shared, base64 encoded secret
//   - Insecure: parse the token without signature verification (development/testing only)
//
// Both modes apply the same rules to the decoded payload: the token must not be
// expired, must carry a non-empty subject, and must carry an authorities claim
// holding a list of strings.
package jwtverifier

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/m-lab/tokenauth/static"
)

var (
	// ErrInvalidToken is returned for malformed, expired or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSubject is returned when a verified token has no usable subject.
	ErrMissingSubject = errors.New("token has no subject")
	// ErrMissingAuthorities is returned when a verified token has no authorities claim.
	ErrMissingAuthorities = errors.New("token has no authorities claim")
)

// Claims holds the verified payload fields used to build a principal.
type Claims struct {
	Subject     string
	Authorities []string
}

// validateTime checks the registered time claims (exp, nbf, iat) when present.
func validateTime(std *jwt.Claims, now time.Time, leeway time.Duration) error {
	if err := std.ValidateWithLeeway(jwt.Expected{Time: now}, leeway); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

// claimsFrom builds Claims from the registered claims and the raw payload
// after the token has been accepted.
func claimsFrom(std *jwt.Claims, raw map[string]interface{}) (*Claims, error) {
	if std.Subject == "" {
		return nil, ErrMissingSubject
	}
	value, ok := raw[static.AuthoritiesClaim]
	if !ok || value == nil {
		return nil, ErrMissingAuthorities
	}
	list, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s claim must be a list of strings", ErrInvalidToken, static.AuthoritiesClaim)
	}
	authorities := make([]string, 0, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a string", ErrInvalidToken, static.AuthoritiesClaim, i)
		}
		authorities = append(authorities, s)
	}
	return &Claims{
		Subject:     std.Subject,
		Authorities: authorities,
	}, nil
}
