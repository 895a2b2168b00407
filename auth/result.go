package auth

// Outcome classifies the result of authenticating one request.
type Outcome int

// Every outcome other than Authenticated leaves the request anonymous.
const (
	NoHeader Outcome = iota
	InvalidPrefix
	InvalidToken
	MissingSubject
	MissingAuthorities
	Authenticated
)

var outcomeNames = map[Outcome]string{
	NoHeader:           "no_header",
	InvalidPrefix:      "invalid_prefix",
	InvalidToken:       "invalid_token",
	MissingSubject:     "missing_subject",
	MissingAuthorities: "missing_authorities",
	Authenticated:      "authenticated",
}

// String returns the outcome name used in logs and metric labels.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Result is the outcome of authenticating a request. Principal is non-nil
// only when Outcome is Authenticated.
type Result struct {
	Outcome   Outcome
	Principal *Principal
}

// Authenticated reports whether the request carried a valid token.
func (r Result) Authenticated() bool {
	return r.Outcome == Authenticated && r.Principal != nil
}
