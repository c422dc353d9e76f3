package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/revampbot/revampbot/internal/storage/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// clearEnv blanks every variable the loader reads, so the host environment does not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for key, env := range envNames {
		for _, name := range []string{env, "REVAMPBOT_" + envKey(key)} {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func envKey(key string) string {
	out := []byte(key)
	for i, c := range out {
		switch {
		case c == '.':
			out[i] = '_'
		case c >= 'a' && c <= 'z':
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}

func TestReadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")

	c, err := ReadDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "token", c.Discord.Token)
	assert.Equal(t, "!", c.Bot.Prefix)
	assert.Equal(t, 5, c.XP.MaxPerMessage)
	assert.Equal(t, 5*time.Second, c.XP.Cooldown)
	assert.Nil(t, c.XP.IgnoreRegexp)
	assert.Empty(t, c.XP.IgnoreChannels)
	assert.Equal(t, "revampbot.db", c.Storage.Path)
	assert.Equal(t, zapcore.InfoLevel, c.Logging.Level)
	assert.Equal(t, "revampbot.log", c.Logging.File)
	assert.Equal(t, uint16(0), c.Api.Port)
}

func TestReadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("BOT_PREFIX", "?")
	t.Setenv("DATABASE_PATH", "/data/bot.db")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MAX_XP_PER_MESSAGE", "12")
	t.Setenv("COOLDOWN_SECONDS", "30")
	t.Setenv("API_PORT", "8080")
	t.Setenv("XP_IGNORE_CHANNELS", "111,222")

	c, err := ReadDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "?", c.Bot.Prefix)
	assert.Equal(t, "/data/bot.db", c.Storage.Path)
	assert.Equal(t, zapcore.DebugLevel, c.Logging.Level)
	assert.Equal(t, 12, c.XP.MaxPerMessage)
	assert.Equal(t, 30*time.Second, c.XP.Cooldown)
	assert.Equal(t, uint16(8080), c.Api.Port)
	assert.Equal(t, []model.Snowflake{111, 222}, c.XP.IgnoreChannels)
}

func TestReadFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := `bot:
  prefix: "$"
xp:
  cooldown: 1m
  ignoreregexp: "^!"
  ignorechannels: [333, 444]
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DISCORD_BOT_TOKEN=from-dotenv\nBOT_PREFIX=%\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("DISCORD_BOT_TOKEN")
		_ = os.Unsetenv("BOT_PREFIX")
	})

	c, err := ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", c.Discord.Token)
	// the environment wins over the file
	assert.Equal(t, "%", c.Bot.Prefix)
	assert.Equal(t, time.Minute, c.XP.Cooldown)
	require.NotNil(t, c.XP.IgnoreRegexp)
	assert.True(t, c.XP.IgnoreRegexp.MatchString("!rank"))
	assert.Equal(t, []model.Snowflake{333, 444}, c.XP.IgnoreChannels)
	assert.Equal(t, zapcore.WarnLevel, c.Logging.Level)
}

func TestReadRequiresToken(t *testing.T) {
	clearEnv(t)
	_, err := ReadDir(t.TempDir())
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestReadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("MAX_XP_PER_MESSAGE", "0")
	_, err := ReadDir(t.TempDir())
	assert.ErrorIs(t, err, ErrInvalid)

	t.Setenv("MAX_XP_PER_MESSAGE", "5")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = ReadDir(t.TempDir())
	assert.Error(t, err)

	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("COOLDOWN_SECONDS", "soon")
	_, err = ReadDir(t.TempDir())
	assert.Error(t, err)
}
