// Package auth authenticates requests carrying a signed bearer token and binds
// the resulting principal to the request context.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/m-lab/tokenauth/auth/jwtverifier"
	"github.com/m-lab/tokenauth/metrics"
)

// TokenVerifier checks a raw token and returns its verified claims.
type TokenVerifier interface {
	Verify(token string) (*jwtverifier.Claims, error)

	// Mode returns the name of the verification mode (for logging/metrics).
	Mode() string
}

// TokenAuthenticator turns a request header into a Result. It holds no
// per-request state and is safe for concurrent use.
type TokenAuthenticator struct {
	config   *Config
	verifier TokenVerifier
}

// NewTokenAuthenticator creates a new TokenAuthenticator.
func NewTokenAuthenticator(cfg *Config, v TokenVerifier) *TokenAuthenticator {
	return &TokenAuthenticator{
		config:   cfg,
		verifier: v,
	}
}

// Authenticate inspects the configured header and verifies any token found.
// Failures are reported through Result.Outcome and never as errors.
func (a *TokenAuthenticator) Authenticate(h http.Header) Result {
	token, outcome, ok := ExtractToken(h, a.config.Header, a.config.Prefix)
	var result Result
	if ok {
		result = a.verify(token)
	} else {
		result = Result{Outcome: outcome}
	}

	metrics.AuthenticationsTotal.WithLabelValues(result.Outcome.String()).Inc()
	fields := log.Fields{
		"mode":    a.verifier.Mode(),
		"outcome": result.Outcome.String(),
	}
	if result.Principal != nil {
		fields["subject"] = result.Principal.ID
	}
	log.WithFields(fields).Debug("request authentication")
	return result
}

// verify runs the verifier and classifies its error. A panicking verifier is
// treated like one that rejected the token.
func (a *TokenAuthenticator) verify(token string) (result Result) {
	start := time.Now()
	defer func() {
		metrics.VerificationDuration.WithLabelValues(a.verifier.Mode()).Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"mode":  a.verifier.Mode(),
				"panic": fmt.Sprintf("%T", r),
			}).Error("token verifier panicked")
			result = Result{Outcome: InvalidToken}
		}
	}()

	cl, err := a.verifier.Verify(token)
	switch {
	case err == nil && cl != nil:
		return Result{Outcome: Authenticated, Principal: NewPrincipal(cl)}
	case errors.Is(err, jwtverifier.ErrMissingSubject):
		return Result{Outcome: MissingSubject}
	case errors.Is(err, jwtverifier.ErrMissingAuthorities):
		return Result{Outcome: MissingAuthorities}
	default:
		return Result{Outcome: InvalidToken}
	}
}
