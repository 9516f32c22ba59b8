package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// DefaultAPIKeyHeader carries API keys unless configured otherwise.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyAuthenticator accepts requests whose key header matches one of a
// fixed set of keys. Keys are held only as SHA-256 digests.
type APIKeyAuthenticator struct {
	header string
	hashes [][sha256.Size]byte
}

// NewAPIKeyAuthenticator creates an authenticator for keys. An empty header
// means DefaultAPIKeyHeader. Blank keys are ignored.
func NewAPIKeyAuthenticator(header string, keys []string) *APIKeyAuthenticator {
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	a := &APIKeyAuthenticator{header: header}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			a.hashes = append(a.hashes, sha256.Sum256([]byte(k)))
		}
	}
	return a
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string { return string(MethodAPIKey) }

// Supports reports whether the key header is present.
func (a *APIKeyAuthenticator) Supports(h http.Header) bool {
	return h.Get(a.header) != ""
}

// Authenticate compares the presented key against every configured key in
// constant time.
func (a *APIKeyAuthenticator) Authenticate(_ context.Context, h http.Header) (*Identity, error) {
	key := strings.TrimSpace(h.Get(a.header))
	if key == "" {
		return nil, ErrMissingCredentials
	}

	sum := sha256.Sum256([]byte(key))
	match := 0
	for _, want := range a.hashes {
		match |= subtle.ConstantTimeCompare(sum[:], want[:])
	}
	if match != 1 {
		return nil, fmt.Errorf("%w: unknown api key", ErrInvalidCredentials)
	}

	return &Identity{Principal: KeyID(key), Method: MethodAPIKey}, nil
}

// KeyID returns a short, non-reversible identifier for key, suitable for
// logs.
func KeyID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "key-" + hex.EncodeToString(sum[:4])
}

var _ Authenticator = (*APIKeyAuthenticator)(nil)
