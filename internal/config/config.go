package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FLASHMATH_LOG_LEVEL.
const EnvPrefix = "FLASHMATH"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string   `mapstructure:"env"` // development or production
	DB       string   `mapstructure:"db"`  // database path; empty selects the default location
	Log      Log      `mapstructure:"log"`
	Practice Practice `mapstructure:"practice"`
	Catalog  Catalog  `mapstructure:"catalog"`
}

// Log configures the zap logger.
type Log struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"` // empty logs to stderr (or a file under the data dir for the TUI)
}

// Practice holds the exercise timing parameters.
type Practice struct {
	FeedbackCorrect   time.Duration `mapstructure:"feedback_correct"`
	FeedbackIncorrect time.Duration `mapstructure:"feedback_incorrect"`
	CountdownTick     time.Duration `mapstructure:"countdown_tick"`
}

// Catalog controls the problem set catalog.
type Catalog struct {
	SeedDefaults bool `mapstructure:"seed_defaults"`
}

// IsProduction reports whether the production logging profile is selected.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Env: "development",
		Log: Log{Level: "info"},
		Practice: Practice{
			FeedbackCorrect:   500 * time.Millisecond,
			FeedbackIncorrect: 1500 * time.Millisecond,
			CountdownTick:     time.Second,
		},
		Catalog: Catalog{SeedDefaults: true},
	}
}

// Load reads configuration from a .env file, the config file and environment
// variables. An explicit path must exist; the default search locations may not.
func Load(path string) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("flashmath")
		v.SetConfigType("yaml")
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	def := Default()
	v.SetDefault("env", def.Env)
	v.SetDefault("db", def.DB)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.path", def.Log.Path)
	v.SetDefault("practice.feedback_correct", def.Practice.FeedbackCorrect)
	v.SetDefault("practice.feedback_incorrect", def.Practice.FeedbackIncorrect)
	v.SetDefault("practice.countdown_tick", def.Practice.CountdownTick)
	v.SetDefault("catalog.seed_defaults", def.Catalog.SeedDefaults)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Practice.FeedbackCorrect <= 0 || c.Practice.FeedbackIncorrect <= 0 {
		return fmt.Errorf("practice feedback delays must be positive")
	}
	if c.Practice.CountdownTick <= 0 {
		return fmt.Errorf("practice.countdown_tick must be positive")
	}
	return nil
}

func searchPaths() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "flashmath"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "flashmath"))
	}
	return append(dirs, ".")
}
