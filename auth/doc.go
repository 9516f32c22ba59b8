// Package auth guards the line endpoint with optional credentials.
//
// Two authenticators are provided: APIKeyAuthenticator checks a header
// against a fixed set of keys, and JWTAuthenticator verifies an
// HMAC-signed bearer token. Composite tries each in turn. Middleware
// applies an Authenticator to an http.Handler and answers 401 on failure.
//
// When no keys and no JWT secret are configured, New returns nil and the
// server runs without authentication.
package auth
