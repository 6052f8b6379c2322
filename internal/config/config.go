// Package config loads ShareBox settings from a YAML file with SHAREBOX_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. Nested keys use a double
// underscore: SHAREBOX_SERVER__LISTEN sets server.listen.
const EnvPrefix = "SHAREBOX_"

// Legacy variables honoured when the config leaves the field empty.
const (
	LegacyPasswordEnv  = "FILESHARING_PASSWORD"
	LegacySecretKeyEnv = "SECRET_KEY"
)

// Config is the full server configuration, corresponding to sharebox.yml.
type Config struct {
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Storage StorageConfig `yaml:"storage" koanf:"storage"`
	Auth    AuthConfig    `yaml:"auth" koanf:"auth"`
	App     AppConfig     `yaml:"app" koanf:"app"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Listen          string        `yaml:"listen" koanf:"listen"`
	CORSOrigins     []string      `yaml:"cors_origins" koanf:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
	ShowQR          bool          `yaml:"show_qr" koanf:"show_qr"`
}

// StorageConfig locates shared files and the shared text.
type StorageConfig struct {
	UploadDir   string   `yaml:"upload_dir" koanf:"upload_dir"`
	TextFile    string   `yaml:"text_file" koanf:"text_file"`
	MaxUploadMB int64    `yaml:"max_upload_mb" koanf:"max_upload_mb"`
	Hidden      []string `yaml:"hidden" koanf:"hidden"`
}

// AuthConfig controls the shared-password login and sessions.
type AuthConfig struct {
	Password     string        `yaml:"password" koanf:"password"`
	PasswordHash string        `yaml:"password_hash" koanf:"password_hash"`
	SecretKey    string        `yaml:"secret_key" koanf:"secret_key"`
	SessionDB    string        `yaml:"session_db" koanf:"session_db"`
	SessionTTL   time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
	CookieName   string        `yaml:"cookie_name" koanf:"cookie_name"`
}

// AppConfig locates the built browser assets (main.wasm, wasm_exec.js).
type AppConfig struct {
	Assets string `yaml:"assets" koanf:"assets"`
}

// LogConfig configures the JSON logger.
type LogConfig struct {
	Dir       string `yaml:"dir" koanf:"dir"`
	Level     string `yaml:"level" koanf:"level"`
	MaxSizeMB int    `yaml:"max_size_mb" koanf:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" koanf:"max_files"`
}

// DefaultConfig returns the settings used when no file or env overrides exist.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          "0.0.0.0:5000",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			UploadDir:   "uploads",
			TextFile:    "shared_texts/TEXT_SHARE_FILE.txt",
			MaxUploadMB: 100,
			Hidden:      []string{".*"},
		},
		Auth: AuthConfig{
			SessionDB:  "data/sessions.db",
			CookieName: "sharebox_session",
		},
		App: AppConfig{
			Assets: "ui",
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// Load reads the YAML file at path (a missing file is fine), then overlays
// SHAREBOX_* environment variables and the legacy fallbacks.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Auth.Password == "" {
		cfg.Auth.Password = os.Getenv(LegacyPasswordEnv)
	}
	if cfg.Auth.SecretKey == "" {
		cfg.Auth.SecretKey = os.Getenv(LegacySecretKeyEnv)
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Listen) == "" {
		errs = append(errs, errors.New("server.listen is required"))
	}
	if strings.TrimSpace(c.Storage.UploadDir) == "" {
		errs = append(errs, errors.New("storage.upload_dir is required"))
	}
	if strings.TrimSpace(c.Storage.TextFile) == "" {
		errs = append(errs, errors.New("storage.text_file is required"))
	}
	if c.Storage.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("storage.max_upload_mb must be positive"))
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		errs = append(errs, fmt.Errorf("auth.password or auth.password_hash is required (or set %s)", LegacyPasswordEnv))
	}
	if c.Auth.SessionTTL < 0 {
		errs = append(errs, errors.New("auth.session_ttl must not be negative"))
	}
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		errs = append(errs, errors.New("auth.cookie_name is required"))
	}
	return errors.Join(errs...)
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Storage.MaxUploadMB * 1024 * 1024
}

// PasswordSource describes where the password came from without revealing it.
func (c *Config) PasswordSource() string {
	switch {
	case c.Auth.PasswordHash != "":
		return "bcrypt hash (auth.password_hash)"
	case os.Getenv(EnvPrefix+"AUTH__PASSWORD") != "":
		return EnvPrefix + "AUTH__PASSWORD"
	case os.Getenv(LegacyPasswordEnv) != "" && c.Auth.Password == os.Getenv(LegacyPasswordEnv):
		return LegacyPasswordEnv
	default:
		return "auth.password"
	}
}
