// Package config holds the CLI configuration. Every flag falls back to an
// environment variable so credentials need not appear on the command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const (
	EnvServer     = "SMARTFOCUS_SERVER"
	EnvLogin      = "SMARTFOCUS_LOGIN"
	EnvPassword   = "SMARTFOCUS_PASSWORD"
	EnvKey        = "SMARTFOCUS_KEY"
	EnvTimeout    = "SMARTFOCUS_TIMEOUT"
	EnvDateFormat = "SMARTFOCUS_DATE_FORMAT"

	defaultTimeout = 10 * time.Second
)

// Credentials identify an API account.
type Credentials struct {
	Login    string
	Password string
	Key      string
}

// Config holds connection and upload settings.
type Config struct {
	// Server is the API host, e.g. p1apie.emv2.com.
	Server string
	Credentials
	// Timeout bounds every HTTP request.
	Timeout time.Duration
	// DateFormat is sent with every upload. It has no default.
	DateFormat string
}

// BindConnectionFlags registers server, credential and timeout flags.
func (c *Config) BindConnectionFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Server, "server", os.Getenv(EnvServer), "API host, e.g. p1apie.emv2.com (env "+EnvServer+")")
	fs.StringVar(&c.Login, "login", os.Getenv(EnvLogin), "API login (env "+EnvLogin+")")
	fs.StringVar(&c.Password, "password", os.Getenv(EnvPassword), "API password (env "+EnvPassword+")")
	fs.StringVar(&c.Key, "key", os.Getenv(EnvKey), "Manager key (env "+EnvKey+")")
	fs.DurationVar(&c.Timeout, "timeout", durationFromEnv(EnvTimeout, defaultTimeout), "HTTP request timeout (env "+EnvTimeout+")")
}

// BindUploadFlags registers the date format flag.
func (c *Config) BindUploadFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.DateFormat, "date-format", os.Getenv(EnvDateFormat),
		"Date format of the file's date columns, e.g. yyyy-MM-dd (env "+EnvDateFormat+")")
}

// Validate checks the settings needed to talk to the API.
func (c Config) Validate() error {
	var errs []error
	if c.Server == "" {
		errs = append(errs, fmt.Errorf("server is required"))
	}
	if c.Login == "" {
		errs = append(errs, fmt.Errorf("login is required"))
	}
	if c.Password == "" {
		errs = append(errs, fmt.Errorf("password is required"))
	}
	if c.Key == "" {
		errs = append(errs, fmt.Errorf("key is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if err := c.ValidateUpload(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateUpload checks the settings needed to build an upload body.
func (c Config) ValidateUpload() error {
	if c.DateFormat == "" {
		return fmt.Errorf("date format is required")
	}
	return nil
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
