package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/lineserve/auth"
	"github.com/jonwraymond/lineserve/health"
	"github.com/jonwraymond/lineserve/lines"
	"github.com/jonwraymond/lineserve/observe"
)

// ErrNilLookuper indicates Options.Lookuper was not set.
var ErrNilLookuper = errors.New("server: lookuper is required")

// Content types for line responses.
const (
	ContentTypeLatin1 = "text/plain; charset=ISO-8859-1"
	ContentTypeUTF8   = "text/plain; charset=utf-8"
)

// Options configures a Server.
type Options struct {
	// Lookuper answers line lookups. Required. Results carrying Err are
	// answered with 503; see lines.Limit.
	Lookuper lines.Lookuper

	// Authenticator guards /lines. Nil disables authentication.
	Authenticator auth.Authenticator

	// Health backs /healthz, /readyz and /health. Default: empty aggregator.
	Health *health.Aggregator

	// Metrics, when set, is served at /metrics.
	Metrics http.Handler

	// Logger receives request errors. Default: no-op.
	Logger observe.Logger

	// UTF8 transcodes lines to UTF-8 instead of sending bytes verbatim.
	UTF8 bool
}

// Server routes HTTP requests to a Lookuper.
type Server struct {
	lookup  lines.Lookuper
	authn   auth.Authenticator
	health  *health.Aggregator
	metrics http.Handler
	logger  observe.Logger
	utf8    bool
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Lookuper == nil {
		return nil, ErrNilLookuper
	}
	if opts.Health == nil {
		opts.Health = health.NewAggregator()
	}
	if opts.Logger == nil {
		opts.Logger = observe.NewNoopLogger()
	}
	return &Server{
		lookup:  opts.Lookuper,
		authn:   opts.Authenticator,
		health:  opts.Health,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		utf8:    opts.UTF8,
	}, nil
}

// Handler returns the routed handler for all endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /lines/{index}", auth.Middleware(s.authn, s.logger)(http.HandlerFunc(s.serveLine)))
	health.RegisterHandlers(mux, s.health)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

func (s *Server) serveLine(w http.ResponseWriter, r *http.Request) {
	index, ok := ParseIndex(r.PathValue("index"))
	if !ok {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}

	res := s.lookup.Lookup(r.Context(), index)
	if res.Err != nil {
		s.logger.Warn(r.Context(), "lookup rejected",
			observe.F("line.index", index),
			observe.F("error", res.Err),
		)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	if !res.Found {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}

	body, contentType := res.Text, ContentTypeLatin1
	if s.utf8 {
		body, contentType = res.UTF8(), ContentTypeUTF8
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// ParseIndex parses a base-10 line index: optional "-" followed by digits.
// It reports false for a leading "+" and for anything strconv.Atoi rejects,
// including values that overflow int. Negative values parse and are left to
// the lookup to answer as absent.
func ParseIndex(s string) (int, bool) {
	if strings.HasPrefix(s, "+") {
		return 0, false
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return i, true
}

// HTTPConfig configures NewHTTPServer.
type HTTPConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewHTTPServer wraps h in an *http.Server with the configured timeouts.
func NewHTTPServer(cfg HTTPConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

// IsUTF8 reports whether charset selects UTF-8 responses.
func IsUTF8(charset string) bool {
	return strings.EqualFold(charset, "utf-8")
}
