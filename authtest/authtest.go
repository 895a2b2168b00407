// Package authtest mints signed tokens for unit tests of packages that verify
// them.
package authtest

import (
	"encoding/base64"
	"time"

	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"

	"github.com/m-lab/tokenauth/static"
)

// Secret and OtherSecret are base64 encoded HMAC keys for tests.
const (
	Secret      = "dG9rZW5hdXRoLXRlc3Qtc2VjcmV0LTAxMjM0NTY3ODk="
	OtherSecret = "YW5vdGhlci1zZWNyZXQtZm9yLXRva2VuYXV0aC14eXo="
)

// SignClaims signs the registered claims cl and any extra private claims with
// the base64 encoded secret using HS256.
func SignClaims(secret string, cl jwt.Claims, extra map[string]interface{}) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", err
	}
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", err
	}
	builder := jwt.Signed(signer).Claims(cl)
	if extra != nil {
		builder = builder.Claims(extra)
	}
	return builder.CompactSerialize()
}

// Sign creates a token for subject carrying the given authorities and expiry.
// A nil authorities slice omits the claim entirely.
func Sign(secret, subject string, authorities []string, expiry time.Time) (string, error) {
	cl := jwt.Claims{
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(expiry.Add(-time.Hour)),
		Expiry:   jwt.NewNumericDate(expiry),
	}
	var extra map[string]interface{}
	if authorities != nil {
		extra = map[string]interface{}{static.AuthoritiesClaim: authorities}
	}
	return SignClaims(secret, cl, extra)
}
