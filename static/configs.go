// Package static contains static information for the tokenauth service.
package static

import "time"

// Constants shared by the interceptor, the verifiers and the service binary.
const (
	DefaultHeader    = "Authorization"
	DefaultPrefix    = "Bearer "
	AuthoritiesClaim = "authorities"

	// DefaultLeeway is the clock skew tolerated when checking exp, nbf and iat.
	DefaultLeeway = 0 * time.Second

	// InsecureEnvVar must be "true" before an insecure verifier can be created.
	InsecureEnvVar = "ALLOW_INSECURE_TOKENS"

	SecretLoadMaxElapsedTime = time.Minute
)
