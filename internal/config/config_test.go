package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid defaults",
			config: Config{
				Port:        "8080",
				DBPath:      "./test.db",
				TemplateDir: "web/templates",
			},
			wantErr: false,
		},
		{
			name: "non-numeric port",
			config: Config{
				Port:        "abc",
				DBPath:      "./test.db",
				TemplateDir: "web/templates",
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "port out of range",
			config: Config{
				Port:        "70000",
				DBPath:      "./test.db",
				TemplateDir: "web/templates",
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "missing db path",
			config: Config{
				Port:        "8080",
				TemplateDir: "web/templates",
			},
			wantErr:     true,
			errorString: "database path cannot be empty",
		},
		{
			name: "admin email without password",
			config: Config{
				Port:        "8080",
				DBPath:      "./test.db",
				TemplateDir: "web/templates",
				AdminEmail:  "admin@example.com",
			},
			wantErr:     true,
			errorString: "ADMIN_PASSWORD is required when ADMIN_EMAIL is set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorString)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "motogiro.db", cfg.DBPath)
	assert.Equal(t, "web/templates", cfg.TemplateDir)
	assert.False(t, cfg.SecureCookie)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SECURE_COOKIE", "true")
	t.Setenv("DB_PATH", "/tmp/other.db")

	cfg := Load()
	assert.Equal(t, "9999", cfg.Port)
	assert.True(t, cfg.SecureCookie)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
}
