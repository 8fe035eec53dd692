package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("app:\n  port: \"9090\"\nqr:\n  size: 300\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 300, cfg.QR.Size)
	assert.Equal(t, "https://api.qrserver.com/v1/create-qr-code/", cfg.QR.Endpoint)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenLifespan)
	assert.Equal(t, 30*time.Second, cfg.Profile.UpdateLockTTL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PUBLIC_BASE_URL", "https://cuervo.example")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "https://cuervo.example", cfg.App.PublicBaseURL)
}
