package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/lineserve/auth"
	"github.com/jonwraymond/lineserve/cache"
	"github.com/jonwraymond/lineserve/observe"
	"github.com/jonwraymond/lineserve/secret"
)

// Supported response charsets.
const (
	CharsetLatin1 = "iso-8859-1"
	CharsetUTF8   = "utf-8"
)

// Config is the complete process configuration.
type Config struct {
	File    FileConfig     `yaml:"file"`
	Cache   cache.Policy   `yaml:"cache"`
	Server  ServerConfig   `yaml:"server"`
	Auth    auth.Config    `yaml:"auth"`
	Observe observe.Config `yaml:"observe"`
}

// Lookup strategies.
const (
	StrategyIndex = "index"
	StrategyScan  = "scan"
)

// FileConfig names the served file and how lines are located in it.
type FileConfig struct {
	Path string `yaml:"path"`

	// Strategy is "index" (offset table built at startup) or "scan"
	// (stream from the start on every miss, no startup cost).
	Strategy string `yaml:"strategy"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxConcurrent caps lookups in flight. Zero means the bulkhead default.
	MaxConcurrent int `yaml:"max_concurrent"`

	// MaxWait is how long a lookup waits for a slot before 503.
	MaxWait time.Duration `yaml:"max_wait"`

	// Charset is the response charset: iso-8859-1 (bytes verbatim) or utf-8.
	Charset string `yaml:"charset"`
}

// Default returns the configuration used when a field is not set.
func Default() Config {
	return Config{
		File:  FileConfig{Strategy: StrategyIndex},
		Cache: cache.DefaultPolicy(),
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			Charset:         CharsetLatin1,
		},
		Observe: observe.Config{
			ServiceName: "lineserve",
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Overrides carries command-line values. Zero values leave the loaded
// configuration unchanged.
type Overrides struct {
	FilePath  string
	CacheSize int
	Addr      string
	LogLevel  string
}

// Load builds a Config from the YAML file at path (optional), resolves
// secrets in it, applies overrides, and validates the result. String values
// from the file go through strict ${VAR} expansion, so a literal "$" there
// is written "$$". Overrides are used verbatim.
func Load(ctx context.Context, path string, o Overrides) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(bytes.NewReader(data), &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	dir := ""
	if path != "" {
		dir = filepath.Dir(path)
	}
	if err := cfg.resolveSecrets(ctx, secret.NewDefaultResolver(dir)); err != nil {
		return nil, err
	}

	// Command-line values are taken literally.
	cfg.apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decode reads YAML into cfg, rejecting unknown keys. An empty document
// leaves cfg unchanged.
func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) apply(o Overrides) {
	if o.FilePath != "" {
		c.File.Path = o.FilePath
	}
	if o.CacheSize != 0 {
		c.Cache.Capacity = o.CacheSize
	}
	if o.Addr != "" {
		c.Server.Addr = o.Addr
	}
	if o.LogLevel != "" {
		c.Observe.Logging.Level = o.LogLevel
	}
}

func (c *Config) resolveSecrets(ctx context.Context, r *secret.Resolver) error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"file.path", &c.File.Path},
		{"server.addr", &c.Server.Addr},
		{"auth.jwt_secret", &c.Auth.JWTSecret},
		{"auth.jwt_issuer", &c.Auth.JWTIssuer},
	}
	for _, f := range fields {
		v, err := r.ResolveValue(ctx, *f.ptr)
		if err != nil {
			return fmt.Errorf("config: %s: %w", f.name, err)
		}
		*f.ptr = v
	}

	keys, err := r.ResolveSlice(ctx, c.Auth.APIKeys)
	if err != nil {
		return fmt.Errorf("config: auth.api_keys: %w", err)
	}
	c.Auth.APIKeys = keys
	return nil
}

// Validate reports configuration that must prevent startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.File.Path) == "" {
		return ErrMissingFilePath
	}
	switch c.File.Strategy {
	case "", StrategyIndex, StrategyScan:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, c.File.Strategy)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("config: cache.size: %w", err)
	}

	s := c.Server
	if s.MaxConcurrent < 0 || s.MaxWait < 0 || s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: limits and timeouts must not be negative", ErrInvalidServer)
	}
	switch strings.ToLower(s.Charset) {
	case "", CharsetLatin1, CharsetUTF8:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCharset, s.Charset)
	}

	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("config: observe: %w", err)
	}
	return nil
}
