package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "!", cfg.Prefix)
	assert.True(t, cfg.SyncCommands)
	assert.Equal(t, "data/commands", cfg.CommandCache)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.FeedbackCacheSize)
	assert.False(t, cfg.WebhookConfigured())
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SLASHKIT_TEST_PREFIX=?\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SLASHKIT_TEST_PREFIX") })

	_, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "?", os.Getenv("SLASHKIT_TEST_PREFIX"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "ok", cfg: Config{DiscordToken: "t", Prefix: "!"}, ok: true},
		{name: "no token", cfg: Config{Prefix: "!"}},
		{name: "no prefix", cfg: Config{DiscordToken: "t"}},
		{name: "half webhook", cfg: Config{DiscordToken: "t", Prefix: "!", ErrorWebhookID: "1"}},
		{name: "webhook", cfg: Config{DiscordToken: "t", Prefix: "!", ErrorWebhookID: "1", ErrorWebhookToken: "x"}, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, 0, CategoryFor("core").Weight)
	assert.Equal(t, 100, CategoryFor("unknown").Weight)
}
