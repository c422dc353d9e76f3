package model

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
)

// GuildConfigVersion is the document version written by SetGuildConfig. Documents without a version key
// were written by the legacy bot and are treated as version 0.
const GuildConfigVersion = 1

var ErrInvalidConfig = errors.New("invalid guild config")

var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

type ModerationConfig struct {
	AutoMod         bool `json:"auto_mod" mapstructure:"auto_mod"`
	SpamDetection   bool `json:"spam_detection" mapstructure:"spam_detection"`
	InviteFiltering bool `json:"invite_filtering" mapstructure:"invite_filtering"`
}

type GuildConfig struct {
	Version              int              `json:"version" mapstructure:"version"`
	AutoSetup            bool             `json:"auto_setup" mapstructure:"auto_setup"`
	WelcomeChannel       Snowflake        `json:"welcome_channel" mapstructure:"welcome_channel"`
	LogChannel           Snowflake        `json:"log_channel" mapstructure:"log_channel"`
	LevelUpNotifications bool             `json:"level_up_notifications" mapstructure:"level_up_notifications"`
	AutoRoles            []Snowflake      `json:"auto_roles" mapstructure:"auto_roles"`
	Moderation           ModerationConfig `json:"moderation" mapstructure:"moderation"`
}

// DefaultGuildConfig is stored for a guild the first time the bot sees it.
func DefaultGuildConfig() *GuildConfig {
	return &GuildConfig{
		Version:              GuildConfigVersion,
		LevelUpNotifications: true,
		AutoRoles:            []Snowflake{},
		Moderation: ModerationConfig{
			SpamDetection: true,
		},
	}
}

func EncodeGuildConfig(c *GuildConfig) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidConfig)
	}
	out := *c
	if out.Version == 0 {
		out.Version = GuildConfigVersion
	}
	if out.Version != GuildConfigVersion {
		return nil, fmt.Errorf("%w: cannot write version %d", ErrInvalidConfig, out.Version)
	}
	if out.AutoRoles == nil {
		out.AutoRoles = []Snowflake{}
	}
	return json.Marshal(&out)
}

// DecodeGuildConfig parses a stored document, migrating legacy (unversioned) documents to the current
// version. Unknown keys and versions newer than GuildConfigVersion are rejected.
func DecodeGuildConfig(raw []byte) (*GuildConfig, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrInvalidConfig)
	}

	version := 0
	if v, ok := doc["version"]; ok {
		n, err := strconv.Atoi(fmt.Sprint(v))
		if err != nil {
			return nil, fmt.Errorf("%w: bad version %v", ErrInvalidConfig, v)
		}
		version = n
	}
	if version < 0 || version > GuildConfigVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidConfig, version)
	}

	c := &GuildConfig{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       numberHook,
		ErrorUnused:      true,
		WeaklyTypedInput: version == 0,
		Result:           c,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	c.Version = GuildConfigVersion
	if c.AutoRoles == nil {
		c.AutoRoles = []Snowflake{}
	}
	return c, nil
}

// numberHook converts json numbers, which arrive as string kinds, into integer fields without a float
// round trip so snowflakes keep full precision.
func numberHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	switch to.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(s, 10, 64)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(s, 10, 64)
	}
	return data, nil
}
