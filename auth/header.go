package auth

import (
	"net/http"
	"strings"
)

// ExtractToken returns the raw token carried in the named header. Only the
// first value of the header is considered. The third return value reports
// whether a token was found; when it is false the Outcome says why.
//
// An empty remainder after the prefix is still returned as a token so that
// verification rejects it.
func ExtractToken(h http.Header, header, prefix string) (string, Outcome, bool) {
	values := h.Values(header)
	if len(values) == 0 {
		return "", NoHeader, false
	}
	value := values[0]
	if !strings.HasPrefix(value, prefix) {
		return "", InvalidPrefix, false
	}
	return strings.TrimPrefix(value, prefix), Authenticated, true
}
