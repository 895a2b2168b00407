package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/m-lab/go/testingx"
	"github.com/m-lab/tokenauth/auth/jwtverifier"
	"github.com/m-lab/tokenauth/authtest"
)

type fakeVerifier struct {
	claims *jwtverifier.Claims
	err    error
	panic  bool
	calls  int
}

func (f *fakeVerifier) Verify(token string) (*jwtverifier.Claims, error) {
	f.calls++
	if f.panic {
		panic("verifier exploded")
	}
	return f.claims, f.err
}

func (f *fakeVerifier) Mode() string {
	return "fake"
}

func bearer(t *testing.T, secret, sub string, auths []string, exp time.Time) http.Header {
	tok, err := authtest.Sign(secret, sub, auths, exp)
	testingx.Must(t, err, "failed to sign token")
	return http.Header{"Authorization": {"Bearer " + tok}}
}

func TestTokenAuthenticator_Authenticate(t *testing.T) {
	future := time.Now().Add(time.Hour)
	tests := []struct {
		name   string
		header http.Header
		want   Result
	}{
		{
			name:   "anonymous-no-header",
			header: http.Header{},
			want:   Result{Outcome: NoHeader},
		},
		{
			name:   "anonymous-invalid-prefix",
			header: http.Header{"Authorization": {"Basic dXNlcjpwYXNz"}},
			want:   Result{Outcome: InvalidPrefix},
		},
		{
			name:   "authenticated",
			header: bearer(t, authtest.Secret, "alice", []string{"ROLE_USER", "ROLE_ADMIN"}, future),
			want: Result{
				Outcome: Authenticated,
				Principal: &Principal{
					ID:          "alice",
					Authorities: []Authority{"ROLE_USER", "ROLE_ADMIN"},
				},
			},
		},
		{
			name:   "anonymous-different-secret",
			header: bearer(t, authtest.OtherSecret, "alice", []string{"ROLE_USER", "ROLE_ADMIN"}, future),
			want:   Result{Outcome: InvalidToken},
		},
		{
			name:   "anonymous-expired",
			header: bearer(t, authtest.Secret, "alice", []string{"ROLE_USER"}, time.Now().Add(-time.Hour)),
			want:   Result{Outcome: InvalidToken},
		},
		{
			name:   "anonymous-missing-authorities",
			header: bearer(t, authtest.Secret, "alice", nil, future),
			want:   Result{Outcome: MissingAuthorities},
		},
		{
			name:   "anonymous-missing-subject",
			header: bearer(t, authtest.Secret, "", []string{"ROLE_USER"}, future),
			want:   Result{Outcome: MissingSubject},
		},
		{
			name:   "anonymous-empty-token",
			header: http.Header{"Authorization": {"Bearer "}},
			want:   Result{Outcome: InvalidToken},
		},
	}

	v, err := jwtverifier.NewHMAC(authtest.Secret)
	testingx.Must(t, err, "failed to create verifier")
	a := NewTokenAuthenticator(NewConfig("", "", authtest.Secret), v)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Authenticate(tt.header)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Authenticate() mismatch (-want +got):\n%s", diff)
			}
			if got.Authenticated() != (tt.want.Outcome == Authenticated) {
				t.Errorf("Authenticated() = %v for outcome %v", got.Authenticated(), got.Outcome)
			}
		})
	}
}

func TestTokenAuthenticator_Idempotent(t *testing.T) {
	v, err := jwtverifier.NewHMAC(authtest.Secret)
	testingx.Must(t, err, "failed to create verifier")
	a := NewTokenAuthenticator(NewConfig("", "", authtest.Secret), v)
	h := bearer(t, authtest.Secret, "alice", []string{"ROLE_USER", "ROLE_ADMIN"}, time.Now().Add(time.Hour))

	first := a.Authenticate(h)
	second := a.Authenticate(h.Clone())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Authenticate() not idempotent (-first +second):\n%s", diff)
	}
	if first.Principal == second.Principal {
		t.Error("Authenticate() returned the same Principal pointer for independent requests")
	}
	first.Principal.Authorities[0] = "ROLE_CHANGED"
	if second.Principal.Authorities[0] != "ROLE_USER" {
		t.Error("Authenticate() results share authority storage")
	}
}

func TestTokenAuthenticator_verifierErrors(t *testing.T) {
	h := http.Header{"Authorization": {"Bearer x.y.z"}}
	tests := []struct {
		name     string
		verifier *fakeVerifier
		want     Outcome
	}{
		{
			name:     "wrapped-missing-subject",
			verifier: &fakeVerifier{err: fmt.Errorf("wrapped: %w", jwtverifier.ErrMissingSubject)},
			want:     MissingSubject,
		},
		{
			name:     "missing-authorities",
			verifier: &fakeVerifier{err: jwtverifier.ErrMissingAuthorities},
			want:     MissingAuthorities,
		},
		{
			name:     "unexpected-error",
			verifier: &fakeVerifier{err: errors.New("boom")},
			want:     InvalidToken,
		},
		{
			name:     "nil-claims-without-error",
			verifier: &fakeVerifier{},
			want:     InvalidToken,
		},
		{
			name:     "panic",
			verifier: &fakeVerifier{panic: true},
			want:     InvalidToken,
		},
		{
			name:     "success",
			verifier: &fakeVerifier{claims: &jwtverifier.Claims{Subject: "svc", Authorities: []string{}}},
			want:     Authenticated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewTokenAuthenticator(NewConfig("", "", authtest.Secret), tt.verifier)
			got := a.Authenticate(h)
			if got.Outcome != tt.want {
				t.Errorf("Authenticate() outcome = %v, want %v", got.Outcome, tt.want)
			}
			if tt.want != Authenticated && got.Principal != nil {
				t.Errorf("Authenticate() returned principal %v for outcome %v", got.Principal, got.Outcome)
			}
			if tt.verifier.calls != 1 {
				t.Errorf("Verify() called %d times, want 1", tt.verifier.calls)
			}
		})
	}
}

func TestTokenAuthenticator_skipsVerifierWithoutToken(t *testing.T) {
	f := &fakeVerifier{}
	a := NewTokenAuthenticator(NewConfig("", "", authtest.Secret), f)
	a.Authenticate(http.Header{})
	a.Authenticate(http.Header{"Authorization": {"Token abc"}})
	if f.calls != 0 {
		t.Errorf("Verify() called %d times, want 0", f.calls)
	}
}

func TestOutcome_String(t *testing.T) {
	if s := Authenticated.String(); s != "authenticated" {
		t.Errorf("String() = %q, want authenticated", s)
	}
	if s := Outcome(99).String(); s != "unknown" {
		t.Errorf("String() = %q, want unknown", s)
	}
}
