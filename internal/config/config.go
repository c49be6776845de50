package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g.
// GUERRILLAMAIL_BASE_URL or GUERRILLAMAIL_LOGGING_LEVEL.
const EnvPrefix = "GUERRILLAMAIL"

// Configuration keys.
const (
	KeyBaseURL       = "base_url"
	KeyIP            = "ip"
	KeyAgent         = "agent"
	KeyLang          = "lang"
	KeyTimeout       = "timeout"
	KeyStrict        = "strict"
	KeySessionFile   = "session_file"
	KeyLoggingLevel  = "logging.level"
	KeyLoggingFormat = "logging.format"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"base-url":     KeyBaseURL,
	"ip":           KeyIP,
	"agent":        KeyAgent,
	"lang":         KeyLang,
	"timeout":      KeyTimeout,
	"strict":       KeyStrict,
	"session-file": KeySessionFile,
	"log-level":    KeyLoggingLevel,
	"log-format":   KeyLoggingFormat,
}

// Config represents the CLI configuration
type Config struct {
	v *viper.Viper
}

// New creates a configuration from defaults, an optional config file and
// the environment. With configFile empty, a file named guerrillamail.{yaml,
// toml,json} is searched for and may be absent.
func New(configFile string) (*Config, error) {
	v := NewEmptyViper()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return &Config{v: v}, nil
	}

	v.SetConfigName("guerrillamail")
	v.AddConfigPath("$HOME/.guerrillamail")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a configuration from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, "http://api.guerrillamail.com/ajax.php")
	v.SetDefault(KeyIP, "127.0.0.1")
	v.SetDefault(KeyAgent, "guerrillamail-go/1.0")
	v.SetDefault(KeyLang, "en")
	v.SetDefault(KeyTimeout, "30s")
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeySessionFile, ".guerrillamail-session.json")

	v.SetDefault(KeyLoggingLevel, "warn")
	v.SetDefault(KeyLoggingFormat, "console")
}

// RegisterFlags adds the configuration flags to flags. Flag defaults are only
// documentation; unset flags never override the file or environment.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("base-url", "", "AJAX endpoint URL")
	flags.String("ip", "", "origin IP sent with every call")
	flags.String("agent", "", "user agent sent with every call")
	flags.String("lang", "", "mailbox language")
	flags.Duration("timeout", 0, "per-call timeout")
	flags.Bool("strict", false, "fail when the requested username is not assigned")
	flags.String("session-file", "", "file the session is kept in between runs")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "console or json")
}

// BindFlags binds the flags registered by RegisterFlags. Flags the user set
// take precedence over every other source.
func (c *Config) BindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := c.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// LoadDotEnv loads environment variables from the given files. Missing
// files are skipped; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) time.Duration {
	return c.v.GetDuration(key)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}

// ClientSettings are the values used to build the API client.
type ClientSettings struct {
	BaseURL     string
	IP          string
	Agent       string
	Lang        string
	Timeout     time.Duration
	Strict      bool
	SessionFile string
}

// Client returns the client settings.
func (c *Config) Client() ClientSettings {
	return ClientSettings{
		BaseURL:     c.GetString(KeyBaseURL),
		IP:          c.GetString(KeyIP),
		Agent:       c.GetString(KeyAgent),
		Lang:        c.GetString(KeyLang),
		Timeout:     c.GetDuration(KeyTimeout),
		Strict:      c.GetBool(KeyStrict),
		SessionFile: c.GetString(KeySessionFile),
	}
}
