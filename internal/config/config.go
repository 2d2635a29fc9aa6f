package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	// HTTP server
	Port         string
	SecureCookie bool

	// Database
	DBPath string

	// Web assets
	TemplateDir string
	StaticDir   string

	// Bootstrap account, created at startup when the email is unknown.
	// Used for first-run setups and the e2e suite.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment with defaults.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		SecureCookie: getEnvBool("SECURE_COOKIE", false),
		DBPath:       getEnv("DB_PATH", "motogiro.db"),
		TemplateDir:  getEnv("TEMPLATE_DIR", "web/templates"),
		StaticDir:    getEnv("STATIC_DIR", "web/static"),

		AdminName:     getEnv("ADMIN_NAME", "Admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

// Validate returns an error describing every invalid setting.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	}
	if c.TemplateDir == "" {
		errs = append(errs, "template directory cannot be empty")
	}

	if c.AdminEmail != "" && c.AdminPassword == "" {
		errs = append(errs, "ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
