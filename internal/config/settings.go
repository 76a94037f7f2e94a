package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. FCCLIPPER_HEADLESS=false or
// FCCLIPPER_LOGGER_LEVEL=debug.
const EnvPrefix = "FCCLIPPER"

type Settings struct {
	BrowserProfilePath string `yaml:"browser_profile_path" mapstructure:"browser_profile_path"`

	Headless       bool   `yaml:"headless" mapstructure:"headless"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	AcceptLanguage string `yaml:"accept_language" mapstructure:"accept_language"`
	ViewportWidth  int    `yaml:"viewport_width" mapstructure:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height" mapstructure:"viewport_height"`
	DisableImages  bool   `yaml:"disable_images" mapstructure:"disable_images"`
	NoSandbox      bool   `yaml:"no_sandbox" mapstructure:"no_sandbox"`

	ActionTimeout   int `yaml:"action_timeout" mapstructure:"action_timeout"`
	SignInTimeout   int `yaml:"sign_in_timeout" mapstructure:"sign_in_timeout"`
	ShowMoreTimeout int `yaml:"show_more_timeout" mapstructure:"show_more_timeout"`
	SettleDelay     int `yaml:"settle_delay" mapstructure:"settle_delay"`

	MaxTries             int `yaml:"max_tries" mapstructure:"max_tries"`
	CacheExpirationHours int `yaml:"cache_expiration_hours" mapstructure:"cache_expiration_hours"`

	DryRun    bool `yaml:"dry_run" mapstructure:"dry_run"`
	DebugMode bool `yaml:"debug_mode" mapstructure:"debug_mode"`

	Logger LoggerConfig `yaml:"logger" mapstructure:"logger"`
}

type LoggerConfig struct {
	ServiceName string      `yaml:"service_name" mapstructure:"service_name"`
	Level       string      `yaml:"level" mapstructure:"level"`
	Format      string      `yaml:"format" mapstructure:"format"`
	AddSource   bool        `yaml:"add_source" mapstructure:"add_source"`
	LogFile     string      `yaml:"log_file" mapstructure:"log_file"`
	MaxSize     int         `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups  int         `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge      int         `yaml:"max_age" mapstructure:"max_age"`
	Compress    bool        `yaml:"compress" mapstructure:"compress"`
	Colors      ColorConfig `yaml:"colors" mapstructure:"colors"`
}

type ColorConfig struct {
	Debug string `yaml:"debug" mapstructure:"debug"`
	Info  string `yaml:"info" mapstructure:"info"`
	Warn  string `yaml:"warn" mapstructure:"warn"`
	Error string `yaml:"error" mapstructure:"error"`
}

func DefaultSettings(dirs Dirs) *Settings {
	return &Settings{
		BrowserProfilePath: dirs.ProfileDir(),
		Headless:           true,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		AcceptLanguage:       "en-US,en;q=0.9",
		ViewportWidth:        700,
		ViewportHeight:       0,
		DisableImages:        true,
		NoSandbox:            true,
		ActionTimeout:        30,
		SignInTimeout:        20,
		ShowMoreTimeout:      10,
		SettleDelay:          2,
		MaxTries:             5,
		CacheExpirationHours: 1,
		DryRun:               false,
		DebugMode:            false,
		Logger: LoggerConfig{
			ServiceName: appName,
			Level:       "warn",
			Format:      "console",
			LogFile:     dirs.LogFile(),
			MaxSize:     5,
			MaxBackups:  3,
			MaxAge:      30,
			Colors: ColorConfig{
				Debug: "cyan",
				Info:  "green",
				Warn:  "yellow",
				Error: "red",
			},
		},
	}
}

// LoadSettings reads the settings file, writing the defaults first when it
// does not exist yet. Environment variables prefixed with EnvPrefix override
// values from the file.
func LoadSettings(path string, dirs Dirs) (*Settings, error) {
	settings := DefaultSettings(dirs)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := settings.Save(path); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings %s: %w", path, err)
	}

	var err error
	if settings.BrowserProfilePath, err = homedir.Expand(settings.BrowserProfilePath); err != nil {
		return nil, err
	}
	if settings.Logger.LogFile, err = homedir.Expand(settings.Logger.LogFile); err != nil {
		return nil, err
	}

	if settings.BrowserProfilePath != "" {
		if err := os.MkdirAll(settings.BrowserProfilePath, 0755); err != nil {
			return nil, err
		}
	}
	if settings.MaxTries < 1 {
		settings.MaxTries = 1
	}

	return settings, nil
}

func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Settings) ActionWait() time.Duration   { return seconds(s.ActionTimeout) }
func (s *Settings) SignInWait() time.Duration   { return seconds(s.SignInTimeout) }
func (s *Settings) ShowMoreWait() time.Duration { return seconds(s.ShowMoreTimeout) }
func (s *Settings) Settle() time.Duration       { return seconds(s.SettleDelay) }

func (s *Settings) CacheExpiration() time.Duration {
	return time.Duration(s.CacheExpirationHours) * time.Hour
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
