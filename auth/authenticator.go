package auth

import (
	"context"
	"net/http"
)

// Authenticator validates the credentials carried by a request.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: failures wrap one of the package sentinel errors.
type Authenticator interface {
	// Name returns a unique identifier for this authenticator.
	Name() string

	// Supports reports whether h carries credentials this authenticator reads.
	Supports(h http.Header) bool

	// Authenticate validates the credentials in h.
	Authenticate(ctx context.Context, h http.Header) (*Identity, error)
}

// Composite tries authenticators in order and returns the first success.
type Composite []Authenticator

// Name returns "composite".
func (Composite) Name() string { return "composite" }

// Supports reports whether any member supports h.
func (c Composite) Supports(h http.Header) bool {
	for _, a := range c {
		if a.Supports(h) {
			return true
		}
	}
	return false
}

// Authenticate returns the first successful identity. If no member
// supports h it fails with ErrMissingCredentials; otherwise it returns the
// last member's error.
func (c Composite) Authenticate(ctx context.Context, h http.Header) (*Identity, error) {
	err := ErrMissingCredentials
	for _, a := range c {
		if !a.Supports(h) {
			continue
		}
		id, aerr := a.Authenticate(ctx, h)
		if aerr == nil {
			return id, nil
		}
		err = aerr
	}
	return nil, err
}

var _ Authenticator = Composite(nil)
