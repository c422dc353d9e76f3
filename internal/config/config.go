package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/revampbot/revampbot/internal/config/hook"
	"github.com/revampbot/revampbot/internal/storage/model"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Bot struct {
		Prefix string
	}

	Discord struct {
		Token string
	}

	XP struct {
		MaxPerMessage  int
		Cooldown       time.Duration
		IgnoreRegexp   *regexp.Regexp
		IgnoreChannels []model.Snowflake
	}

	Storage struct {
		Path string
	}

	Logging struct {
		Level zapcore.Level
		File  string
	}

	Api struct {
		Port uint16
	}
}

// Environment names used by existing deployments.
var envNames = map[string]string{
	"bot.prefix":        "BOT_PREFIX",
	"discord.token":     "DISCORD_BOT_TOKEN",
	"xp.maxpermessage":  "MAX_XP_PER_MESSAGE",
	"xp.cooldown":       "COOLDOWN_SECONDS",
	"xp.ignoreregexp":   "XP_IGNORE_REGEXP",
	"xp.ignorechannels": "XP_IGNORE_CHANNELS",
	"storage.path":      "DATABASE_PATH",
	"logging.level":     "LOG_LEVEL",
	"logging.file":      "LOG_FILE",
	"api.port":          "API_PORT",
}

// Read loads the configuration from config.yaml and .env in the working directory, then the environment.
func Read() (*Config, error) {
	return ReadDir(".")
}

// ReadDir is Read with config.yaml and .env looked up in dir. Both files are optional.
func ReadDir(dir string) (*Config, error) {
	if err := loadDotEnv(dir); err != nil {
		return nil, err
	}
	v := viper.New()
	configureDefaults(v)
	if err := configureEnv(v); err != nil {
		return nil, err
	}
	configureLocation(v, dir)
	c, err := readUnmarshalConfig(v)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadDotEnv never overrides variables that are already set.
func loadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("couldn't load .env: %w", err)
	}
	return nil
}

func configureDefaults(v *viper.Viper) {
	v.SetDefault("bot.prefix", "!")
	v.SetDefault("xp.maxpermessage", 5)
	v.SetDefault("xp.cooldown", 5)
	v.SetDefault("storage.path", "revampbot.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "revampbot.log")
	v.SetDefault("api.port", 0)
}

func configureEnv(v *viper.Viper) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("revampbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envNames {
		if err := v.BindEnv(key, "REVAMPBOT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return err
		}
	}
	return nil
}

func configureLocation(v *viper.Viper, dir string) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
}

func readUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	c := &Config{}
	if err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		// Regexp goes last: it may turn the value into nil, which the other hooks cannot take.
		hook.Level(), hook.Seconds(), mapstructure.StringToSliceHookFunc(","), hook.Regexp(),
	))); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Discord.Token) == "" {
		problems = append(problems, "discord token is required (DISCORD_BOT_TOKEN)")
	}
	if strings.TrimSpace(c.Bot.Prefix) == "" {
		problems = append(problems, "command prefix must not be empty")
	}
	if c.XP.MaxPerMessage < 1 {
		problems = append(problems, "max xp per message must be at least 1")
	}
	if c.XP.Cooldown < 0 {
		problems = append(problems, "xp cooldown must not be negative")
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		problems = append(problems, "database path is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
