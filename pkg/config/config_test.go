package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MinimalConfig(t *testing.T) {
	path := writeConfig(t, `
base_url: https://shop.example/admin
username: admin
password: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example/admin", cfg.BaseURL)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Listing())
	assert.Equal(t, 50*time.Millisecond, cfg.Timeouts.Ack())
	assert.Equal(t, 600, cfg.Timeouts.MaxClickRetries)
	assert.NotEmpty(t, cfg.Selectors.FMTreeNode)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
base_url: https://shop.example/admin
username: admin
password: secret
headless: false
upload_dir: media/products
success_phrase: uploaded successfully
timeouts:
  listing_seconds: 10
selectors:
  fm_frame_name: elfinder
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Headless)
	assert.Equal(t, "media/products", cfg.UploadDir)
	assert.Equal(t, "uploaded successfully", cfg.SuccessPhrase)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Listing())
	assert.Equal(t, "elfinder", cfg.Selectors.FMFrameName)
	// untouched defaults survive partial override
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Dialog())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing base_url",
			content: "username: a\npassword: b\n",
			errMsg:  "base_url is required",
		},
		{
			name:    "invalid base_url",
			content: "base_url: not a url\nusername: a\npassword: b\n",
			errMsg:  "not a valid URL",
		},
		{
			name:    "missing credentials",
			content: "base_url: https://shop.example\n",
			errMsg:  "username is required",
		},
		{
			name:    "bad timeout",
			content: "base_url: https://shop.example\nusername: a\npassword: b\ntimeouts:\n  listing_seconds: -1\n",
			errMsg:  "timeouts must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
