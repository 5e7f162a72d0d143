// Package config loads ragchat settings from ~/.ragchat/config.toml, falling
// back to built-in defaults, with environment variables taking precedence
// over both.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

type Backend string

const (
	BackendHTTP   Backend = "http"
	BackendOpenAI Backend = "openai"
	BackendMock   Backend = "mock"
)

type Config struct {
	Backend Backend `toml:"backend"`

	// APIURL is the base URL of the RAG service; requests go to
	// {APIURL}/api/chat/{conversationId}.
	APIURL             string `toml:"api_url"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs"`
	RequestsPerMinute  int    `toml:"requests_per_minute"` // 0 = unlimited

	OpenAIAPIKey string `toml:"openai_api_key"`
	Model        string `toml:"model"`
	MaxTokens    int    `toml:"max_tokens"`

	MockDelayMs int `toml:"mock_delay_ms"`

	// ArchivePath is the sqlite file conversations are written to. Empty
	// keeps everything in memory.
	ArchivePath string `toml:"archive_path"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	UI UIConfig `toml:"ui"`
}

type UIConfig struct {
	SidebarWidth   int  `toml:"sidebar_width"`
	RenderMarkdown bool `toml:"render_markdown"`
}

// Dir is where ragchat keeps its config, log and archive.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "getting user home directory")
	}
	return filepath.Join(home, ".ragchat"), nil
}

func Default() *Config {
	dir, err := Dir()
	if err != nil {
		dir = ".ragchat"
	}
	return &Config{
		Backend:            BackendMock,
		APIURL:             "http://localhost:3000",
		RequestTimeoutSecs: 60,
		Model:              "gpt-3.5-turbo",
		MaxTokens:          1000,
		MockDelayMs:        2000,
		ArchivePath:        filepath.Join(dir, "conversations.db"),
		LogLevel:           "info",
		LogFile:            filepath.Join(dir, "ragchat.log"),
		UI: UIConfig{
			SidebarWidth:   30,
			RenderMarkdown: true,
		},
	}
}

// Load reads path (or the default location when path is empty). A missing
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "getting os stats")
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// ApplyEnvOverrides lets RAGCHAT_* variables (and OPENAI_API_KEY) win over
// the file.
func (c *Config) ApplyEnvOverrides() {
	c.Backend = Backend(strings.ToLower(getEnv("RAGCHAT_BACKEND", string(c.Backend))))
	c.APIURL = getEnv("RAGCHAT_API_URL", c.APIURL)
	c.RequestTimeoutSecs = getIntEnv("RAGCHAT_REQUEST_TIMEOUT", c.RequestTimeoutSecs)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.Model = getEnv("RAGCHAT_MODEL", c.Model)
	c.ArchivePath = getEnv("RAGCHAT_ARCHIVE", c.ArchivePath)
	c.LogLevel = getEnv("RAGCHAT_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("RAGCHAT_LOG_FILE", c.LogFile)
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendHTTP:
		if c.APIURL == "" {
			return errors.New("api_url must be set for the http backend")
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY must be set for the openai backend")
		}
	case BackendMock:
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	if c.RequestTimeoutSecs <= 0 {
		return errors.Errorf("request_timeout_secs must be positive, got %d", c.RequestTimeoutSecs)
	}
	if c.RequestsPerMinute < 0 {
		return errors.Errorf("requests_per_minute must not be negative, got %d", c.RequestsPerMinute)
	}
	if c.UI.SidebarWidth < 10 {
		c.UI.SidebarWidth = 10
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func (c *Config) MockDelay() time.Duration {
	return time.Duration(c.MockDelayMs) * time.Millisecond
}
