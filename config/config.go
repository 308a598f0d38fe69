package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"time"

	"cloud.google.com/go/civil"
	"github.com/BurntSushi/toml"
)

const baseCfgPath = "rssfetch/config.toml"

const (
	DefaultTimeout = 15 * time.Second
	DefaultCutoff  = "2015-01-01"
)

type Config struct {
	Timeout            string `toml:"timeout"`              // Per-request HTTP timeout, e.g. "15s"
	Cutoff             string `toml:"cutoff"`               // Posts dated on or before this day are dropped
	InsecureSkipVerify *bool  `toml:"insecure_skip_verify"` // Defaults to true if not set
	UserAgent          string `toml:"user_agent"`
	DatabasePath       string `toml:"database_path"` // Optional SQLite fetch log, empty disables it
	Filter             Filter `toml:"filters"`
}

// Filter defines extra rules applied to posts after the cutoff
type Filter struct {
	ExcludeTitlePatterns []string `toml:"exclude_title_patterns"`
}

// SkipVerify reports whether TLS certificate validation is disabled (defaults to true)
func (c Config) SkipVerify() bool {
	if c.InsecureSkipVerify == nil {
		return true
	}
	return *c.InsecureSkipVerify
}

func (c Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout '%s' with %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

func (c Config) CutoffDate() (civil.Date, error) {
	s := c.Cutoff
	if s == "" {
		s = DefaultCutoff
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid cutoff '%s' with %w", s, err)
	}
	return d, nil
}

// Validate checks every derived value so that failures surface before any network activity
func (c Config) Validate() error {
	var errs []error
	if _, err := c.RequestTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.CutoffDate(); err != nil {
		errs = append(errs, err)
	}
	for _, pattern := range c.Filter.ExcludeTitlePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("invalid exclude pattern '%s' with %w", pattern, err))
		}
	}
	return errors.Join(errs...)
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	return conf, nil
}

func Default() Config {
	return Config{
		Timeout: DefaultTimeout.String(),
		Cutoff:  DefaultCutoff,
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	return ""
}
