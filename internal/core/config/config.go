// Package config loads hireplan settings from ~/.config/hireplan/, a .env
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/neilberkman/hireplan/internal/core/artifacts"
	"github.com/neilberkman/hireplan/internal/core/docstore"
	"github.com/neilberkman/hireplan/internal/core/extract"
	"github.com/neilberkman/hireplan/internal/core/llm"
)

// Override file names in the config directory.
const (
	ConfigFile             = "config.toml"
	EngineerTemplateFile   = "job_description_engineer.mustache"
	InternTemplateFile     = "job_description_intern.mustache"
	SystemPromptFile       = "system_prompt.txt"
	EnvFile                = ".env"
	DefaultServerAddr      = "127.0.0.1:8080"
	DefaultMetricsInterval = 30 * time.Second
)

type Config struct {
	ConfigDir string           `toml:"-"`
	DataDir   string           `toml:"data_dir"`
	Storage   StorageConfig    `toml:"storage"`
	LLM       llm.Config       `toml:"llm"`
	Server    ServerConfig     `toml:"server"`
	Extractor extract.Defaults `toml:"extractor"`

	// Loaded from override files, not TOML.
	Templates    artifacts.Templates `toml:"-"`
	SystemPrompt string              `toml:"-"`
}

type StorageConfig struct {
	Driver        string `toml:"driver"` // file, sqlite, redis
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

type ServerConfig struct {
	Addr            string        `toml:"addr"`
	MetricsInterval time.Duration `toml:"metrics_interval"`
}

// DefaultConfigDir returns ~/.config/hireplan, or "" when there is no home
// directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hireplan")
}

// DefaultDataDir returns ~/.local/share/hireplan, or ./data without a home
// directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".local", "share", "hireplan")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ConfigDir: DefaultConfigDir(),
		DataDir:   DefaultDataDir(),
		Storage:   StorageConfig{Driver: docstore.DriverFile},
		LLM:       llm.DefaultConfig(),
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			MetricsInterval: DefaultMetricsInterval,
		},
		Extractor:    extract.DefaultRules(),
		Templates:    artifacts.DefaultTemplates(),
		SystemPrompt: llm.SystemPrompt,
	}
}

// Load builds the configuration: defaults, then the TOML file, then override
// files next to it, then .env and environment variables. An empty path uses
// config.toml in the default config directory; a missing default file is
// not an error, a missing explicit one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if explicit {
		cfg.ConfigDir = filepath.Dir(path)
	} else if cfg.ConfigDir != "" {
		path = filepath.Join(cfg.ConfigDir, ConfigFile)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if explicit {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// godotenv.Load never overrides a set variable: the real environment
	// wins, then ./.env, then the config directory .env.
	_ = godotenv.Load(EnvFile)
	if cfg.ConfigDir != "" {
		cfg.loadOverrides()
		_ = godotenv.Load(filepath.Join(cfg.ConfigDir, EnvFile))
	}

	cfg.applyEnv()
	cfg.fill()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadOverrides() {
	if data, err := os.ReadFile(filepath.Join(c.ConfigDir, EngineerTemplateFile)); err == nil {
		c.Templates.Engineer = string(data)
	}
	if data, err := os.ReadFile(filepath.Join(c.ConfigDir, InternTemplateFile)); err == nil {
		c.Templates.Intern = string(data)
	}
	if data, err := os.ReadFile(filepath.Join(c.ConfigDir, SystemPromptFile)); err == nil {
		if prompt := strings.TrimSpace(string(data)); prompt != "" {
			c.SystemPrompt = prompt
		}
	}
}

func (c *Config) applyEnv() {
	setString(&c.DataDir, "HIREPLAN_DATA_DIR")
	setString(&c.Storage.Driver, "HIREPLAN_STORAGE_DRIVER")
	setString(&c.Storage.SQLitePath, "HIREPLAN_SQLITE_PATH")
	setString(&c.Storage.RedisAddr, "HIREPLAN_REDIS_ADDR")
	setString(&c.Storage.RedisPassword, "HIREPLAN_REDIS_PASSWORD")
	setInt(&c.Storage.RedisDB, "HIREPLAN_REDIS_DB")
	setString(&c.Server.Addr, "HIREPLAN_SERVER_ADDR")

	setString(&c.LLM.Provider, "HIREPLAN_LLM_PROVIDER")
	setString(&c.LLM.Model, "HIREPLAN_LLM_MODEL")
	setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.Region, "AWS_REGION")
	setString(&c.LLM.Profile, "AWS_PROFILE")
	setString(&c.LLM.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&c.LLM.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
}

// fill derives paths that depend on DataDir.
func (c *Config) fill() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = docstore.DriverFile
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = filepath.Join(c.DataDir, "hireplan.db")
	}
	if c.Server.MetricsInterval <= 0 {
		c.Server.MetricsInterval = DefaultMetricsInterval
	}
}

// SetDataDir moves the data directory, carrying a derived sqlite path along.
func (c *Config) SetDataDir(dir string) {
	if c.Storage.SQLitePath == filepath.Join(c.DataDir, "hireplan.db") {
		c.Storage.SQLitePath = filepath.Join(dir, "hireplan.db")
	}
	c.DataDir = dir
}

// Validate checks driver and provider names and required values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir cannot be empty")
	}
	switch c.Storage.Driver {
	case docstore.DriverFile, docstore.DriverSQLite:
	case docstore.DriverRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("storage.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderBedrock, llm.ProviderStatic:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Retries < 0 {
		return errors.New("llm.retries cannot be negative")
	}
	return nil
}

// StoreOptions returns the docstore options for the configured backend.
func (c *Config) StoreOptions() docstore.Options {
	return docstore.Options{
		Dir:           c.DataDir,
		SQLitePath:    c.Storage.SQLitePath,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
		RedisPrefix:   c.Storage.RedisPrefix,
	}
}

// OpenStore opens the configured document backend.
func (c *Config) OpenStore() (docstore.Store, error) {
	return docstore.Open(c.Storage.Driver, c.StoreOptions())
}

// LogDir is where file logs are written.
func (c *Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
