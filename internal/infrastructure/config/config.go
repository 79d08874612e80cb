// Package config provides environment-driven configuration for catalogctl.
// All environment access happens here; the rest of the application receives
// explicit configuration values.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

// Environment variable prefix. Settings are read as CATALOGCTL_<KEY>, e.g.
// CATALOGCTL_LOG_LEVEL or CATALOGCTL_AUTHOR_NAME.
const EnvPrefix = "CATALOGCTL"

// Default values.
const (
	DefaultLogLevel   = "info"
	DefaultLogAppName = "catalogctl"
	DefaultRemoteName = domain.DefaultRemoteName
)

// Config holds all application configuration.
type Config struct {
	// AuthorName is the commit author display name. Optional; when unset the
	// catalog repository's own user configuration is used.
	AuthorName string

	// AuthorEmail is the commit author email address.
	AuthorEmail string

	// RemoteName is the remote the catalog publishes to.
	RemoteName string

	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string

	// LogAppName is the application name for log context.
	LogAppName string
}

// Load loads the application configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_app_name", DefaultLogAppName)
	v.SetDefault("remote_name", DefaultRemoteName)

	cfg := &Config{
		AuthorName:  v.GetString("author_name"),
		AuthorEmail: v.GetString("author_email"),
		RemoteName:  v.GetString("remote_name"),
		LogLevel:    v.GetString("log_level"),
		LogAppName:  v.GetString("log_app_name"),
	}

	if (cfg.AuthorName == "") != (cfg.AuthorEmail == "") {
		return nil, fmt.Errorf("author identity requires both %s_AUTHOR_NAME and %s_AUTHOR_EMAIL", EnvPrefix, EnvPrefix)
	}
	return cfg, nil
}

// Identity returns the configured commit identity, or nil when no explicit
// identity is configured.
func (c *Config) Identity() *domain.Identity {
	if c.AuthorName == "" || c.AuthorEmail == "" {
		return nil
	}
	return &domain.Identity{Name: c.AuthorName, Email: c.AuthorEmail}
}
