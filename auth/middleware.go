package auth

import (
	"net/http"
	"strings"

	"github.com/jonwraymond/lineserve/observe"
)

// Config selects the authenticators New builds.
type Config struct {
	APIKeys      []string `yaml:"api_keys"`
	APIKeyHeader string   `yaml:"api_key_header"`
	JWTSecret    string   `yaml:"jwt_secret"`
	JWTIssuer    string   `yaml:"jwt_issuer"`
	JWTAudience  string   `yaml:"jwt_audience"`
}

// Enabled reports whether any credential is configured. Blank API keys do
// not count.
func (c Config) Enabled() bool {
	return len(c.apiKeys()) > 0 || c.JWTSecret != ""
}

// apiKeys returns the configured keys with blank entries removed.
func (c Config) apiKeys() []string {
	var keys []string
	for _, k := range c.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// New builds an Authenticator from cfg, or returns nil when cfg configures
// no credentials.
func New(cfg Config) Authenticator {
	var c Composite
	if keys := cfg.apiKeys(); len(keys) > 0 {
		c = append(c, NewAPIKeyAuthenticator(cfg.APIKeyHeader, keys))
	}
	if cfg.JWTSecret != "" {
		c = append(c, NewJWTAuthenticator(JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}))
	}
	switch len(c) {
	case 0:
		return nil
	case 1:
		return c[0]
	default:
		return c
	}
}

// Middleware rejects requests that a fails to authenticate with 401 and
// attaches the Identity to the request context otherwise. A nil a passes
// every request through.
func Middleware(a Authenticator, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NewNoopLogger()
	}
	return func(next http.Handler) http.Handler {
		if a == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r.Context(), r.Header)
			if err != nil {
				logger.Warn(r.Context(), "authentication failed",
					observe.F("path", r.URL.Path),
					observe.F("authenticator", a.Name()),
					observe.F("error", err),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="lineserve"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
