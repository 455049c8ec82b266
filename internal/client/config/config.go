package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gilab/labsite/internal/client/querycache"
)

const (
	SourceAPI    = "api"
	SourceStatic = "static"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds runtime settings for labcli.
type Config struct {
	APIBaseURL string
	// Source selects where public content is read from: SourceAPI or
	// SourceStatic. Admin actions always use the API.
	Source string

	// Static export location; the first one set is used: StaticDir, S3Bucket,
	// StaticBaseURL, then APIBaseURL.
	StaticBaseURL string
	StaticDir     string
	S3Bucket      string
	S3Prefix      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string

	DatabasePath string
	NoPersist    bool

	QueryRetry     int
	RetryBase      time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.Source = SourceAPI
	c.DatabasePath = "labsite.db"
	c.QueryRetry = querycache.DefaultQueryRetry
	c.RetryBase = querycache.DefaultRetryBase
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// StaticURL is the base the static export is fetched from over HTTP.
func (c *Config) StaticURL() string {
	if c.StaticBaseURL != "" {
		return c.StaticBaseURL
	}
	return c.APIBaseURL
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := url.ParseRequestURI(c.APIBaseURL); err != nil {
		errs = append(errs, fmt.Errorf("api url %q: %w", c.APIBaseURL, err))
	}
	switch c.Source {
	case SourceAPI, SourceStatic:
	default:
		errs = append(errs, fmt.Errorf("source %q: want %s or %s", c.Source, SourceAPI, SourceStatic))
	}
	if c.QueryRetry < 0 {
		errs = append(errs, fmt.Errorf("query retry %d is negative", c.QueryRetry))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s is negative", c.RequestTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Load builds a Config from defaults, the environment, an optional config
// file and flags found in args. Later sources take precedence.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
