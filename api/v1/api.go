// Package v1 defines the response types of the tokenauth service.
package v1

// WhoamiResult describes the principal bound to a request.
type WhoamiResult struct {
	// Anonymous is true when the request carried no valid token.
	Anonymous bool `json:"anonymous"`

	// Principal is present only for authenticated requests.
	Principal *Principal `json:"principal,omitempty"`
}

// Principal is the wire form of an authenticated identity.
type Principal struct {
	ID          string   `json:"id"`
	Authorities []string `json:"authorities"`
}
