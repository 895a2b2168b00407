package jwtverifier

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/square/go-jose.v2/jwt"

	log "github.com/sirupsen/logrus"

	"github.com/m-lab/tokenauth/static"
)

// InsecureVerifier parses tokens WITHOUT signature verification. This mode is
// ONLY for development and testing. It requires the ALLOW_INSECURE_TOKENS=true
// environment variable to be set as a safety check.
//
// WARNING: Never use this in production - it accepts any token regardless of signature.
type InsecureVerifier struct {
	warnedOnce sync.Once
	now        func() time.Time
}

// NewInsecure creates a new insecure token verifier.
// Returns an error if the ALLOW_INSECURE_TOKENS environment variable is not set to "true".
func NewInsecure() (*InsecureVerifier, error) {
	if os.Getenv(static.InsecureEnvVar) != "true" {
		return nil, fmt.Errorf("insecure mode requires %s=true environment variable", static.InsecureEnvVar)
	}

	log.Warn("======================================================================")
	log.Warn("INSECURE TOKEN MODE ENABLED - signatures will NOT be validated!")
	log.Warn("This mode should ONLY be used in development/testing environments")
	log.Warn("DO NOT USE IN PRODUCTION")
	log.Warn("======================================================================")

	return &InsecureVerifier{now: time.Now}, nil
}

// Verify extracts claims without signature verification. Expiry, subject and
// authorities are still checked.
func (v *InsecureVerifier) Verify(token string) (*Claims, error) {
	v.warnedOnce.Do(func() {
		log.Warn("INSECURE MODE: Parsing token without signature verification")
	})

	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse token: %v", ErrInvalidToken, err)
	}

	var std jwt.Claims
	var raw map[string]interface{}
	if err := parsed.UnsafeClaimsWithoutVerification(&std, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to extract claims: %v", ErrInvalidToken, err)
	}
	if err := validateTime(&std, v.now(), static.DefaultLeeway); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"mode":    "insecure",
		"subject": std.Subject,
	}).Debug("token claims extracted (UNVERIFIED)")

	return claimsFrom(&std, raw)
}

// Mode returns the verification mode name.
func (v *InsecureVerifier) Mode() string {
	return "insecure"
}
