package auth

import (
	"errors"

	"github.com/hashicorp/go-multierror"

	"github.com/m-lab/tokenauth/auth/jwtverifier"
	"github.com/m-lab/tokenauth/static"
)

// Config describes how to recognize and validate a bearer token. A Config is
// created once at startup and only read afterwards.
type Config struct {
	// Header is the name of the request header carrying the token.
	Header string
	// Prefix is the literal text that must precede the token in the header value.
	Prefix string
	// Secret is the base64 encoded signing key.
	Secret string
}

// NewConfig creates a Config, substituting defaults for an empty header or prefix.
func NewConfig(header, prefix, secret string) *Config {
	if header == "" {
		header = static.DefaultHeader
	}
	if prefix == "" {
		prefix = static.DefaultPrefix
	}
	return &Config{
		Header: header,
		Prefix: prefix,
		Secret: secret,
	}
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var result error
	if c.Header == "" {
		result = multierror.Append(result, errors.New("header name cannot be empty"))
	}
	if c.Prefix == "" {
		result = multierror.Append(result, errors.New("token prefix cannot be empty"))
	}
	if _, err := jwtverifier.DecodeSecret(c.Secret); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}
