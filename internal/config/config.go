// Package config handles the selah configuration file and environment
// overrides. Configuration lives in ~/.config/selah/config.toml and is read
// once at startup; the theme choice is written back when cycled in the UI.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything selah reads from its config file.
type Config struct {
	// APIURL is the base URL of the remote Bible-study API.
	APIURL string `toml:"api_url" env:"SELAH_API_URL"`
	// Theme is the UI theme: "light" or "dark".
	Theme string `toml:"theme" env:"SELAH_THEME"`
	// Language is the narration language voices are preferred for.
	Language string `toml:"language" env:"SELAH_LANGUAGE"`
	// SpeechCommand overrides the autodetected text-to-speech command.
	SpeechCommand string `toml:"speech_command" env:"SELAH_SPEECH_COMMAND"`
}

const (
	defaultConfigPath = "~/.config/selah/config.toml"
	defaultAPIURL     = "http://127.0.0.1:8000/api"
	defaultTheme      = "dark"
	defaultLanguage   = "fr"
)

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config file, falling back to defaults when missing, then
// applies environment overrides. A .env file in the working directory is
// honored before the environment is read.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIURL:   defaultAPIURL,
		Theme:    defaultTheme,
		Language: defaultLanguage,
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	if err == nil {
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = defaultAPIURL
	}
	if strings.TrimSpace(cfg.Theme) == "" {
		cfg.Theme = defaultTheme
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = defaultLanguage
	}
	return cfg, nil
}

// Save writes the config file, creating directories as needed.
func Save(path string, cfg Config) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	bytes, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// StateDir returns the directory durable application state lives in:
// XDG_STATE_HOME/selah or ~/.local/state/selah.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "selah")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "selah")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
