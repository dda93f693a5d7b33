package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Role sources
const (
	RoleSourceClaim     = "claim"
	RoleSourceAllowList = "allowlist"
)

// Expiry policies for tokens without an exp claim
const (
	ExpiryLenient = "lenient"
	ExpiryStrict  = "strict"
)

// Config holds client settings
type Config struct {
	APIURL      string   `yaml:"api_url" json:"api_url"`           // Backend base URL
	BotNumber   string   `yaml:"bot_number" json:"bot_number"`     // WhatsApp bot phone number
	AdminPhones []string `yaml:"admin_phones" json:"admin_phones"` // Admin allow-list (role_source=allowlist)

	RoleSource    string        `yaml:"role_source" json:"role_source"`       // claim or allowlist
	ExpiryPolicy  string        `yaml:"expiry_policy" json:"expiry_policy"`   // lenient or strict
	WatchEvery    time.Duration `yaml:"watch_interval" json:"watch_interval"` // Session re-check interval
	FailDelay     time.Duration `yaml:"magic_fail_delay" json:"magic_fail_delay"`
	ListenAddr    string        `yaml:"listen_addr" json:"listen_addr"` // Local web server address
	ConfirmDelete bool          `yaml:"confirm_delete" json:"confirm_delete"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns the kawai state directory (~/.kawai, or $KAWAI_HOME)
func Dir() (string, error) {
	if dir := os.Getenv("KAWAI_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kawai"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	logPath := ""
	if dir, err := Dir(); err == nil {
		logPath = filepath.Join(dir, "logs", "kawai.log")
	}

	return &Config{
		APIURL:        getEnv("KAWAI_API_URL", "https://kawai-be.vercel.app"),
		BotNumber:     getEnv("KAWAI_BOT_NUMBER", ""),
		AdminPhones:   SplitPhones(getEnv("KAWAI_ADMIN_PHONES", "")),
		RoleSource:    getEnv("KAWAI_ROLE_SOURCE", RoleSourceClaim),
		ExpiryPolicy:  getEnv("KAWAI_EXPIRY_POLICY", ExpiryLenient),
		WatchEvery:    2 * time.Second,
		FailDelay:     3 * time.Second,
		ListenAddr:    getEnv("KAWAI_LISTEN_ADDR", "127.0.0.1:5173"),
		ConfirmDelete: true,
		LogLevel:      getEnv("KAWAI_LOG_LEVEL", "INFO"),
		LogFile:       getEnv("KAWAI_LOG_FILE", logPath),
		LogConsole:    getEnv("KAWAI_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SplitPhones parses a comma separated allow-list, dropping blanks
func SplitPhones(s string) []string {
	var phones []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			phones = append(phones, p)
		}
	}
	return phones
}

// LoadEnv loads .env.local and .env from the working directory if present.
// Variables already set in the environment win.
func LoadEnv() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from ~/.kawai/config.yaml
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// environment-only config still goes through Validate
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.RoleSource {
	case RoleSourceClaim, RoleSourceAllowList:
	default:
		return fmt.Errorf("invalid role_source %q: want %q or %q", c.RoleSource, RoleSourceClaim, RoleSourceAllowList)
	}
	switch c.ExpiryPolicy {
	case ExpiryLenient, ExpiryStrict:
	default:
		return fmt.Errorf("invalid expiry_policy %q: want %q or %q", c.ExpiryPolicy, ExpiryLenient, ExpiryStrict)
	}
	return nil
}

// SessionDBPath returns the session database path (~/.kawai/session.db)
func SessionDBPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.db"), nil
}

// Save saves config to ~/.kawai/config.yaml
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
