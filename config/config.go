package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/miosa/lingo-tui/client"
)

// Config holds persistent settings stored at <profileDir>/config.yaml.
type Config struct {
	BackendURL string    `yaml:"backend_url,omitempty"`
	Theme      string    `yaml:"theme,omitempty"`
	LogLevel   string    `yaml:"log_level,omitempty"`
	Telemetry  bool      `yaml:"telemetry,omitempty"`
	WordWrap   int       `yaml:"word_wrap,omitempty"`
	Endpoints  Endpoints `yaml:"endpoints,omitempty"`
}

// Endpoints overrides backend paths. Empty fields keep the defaults.
type Endpoints struct {
	SessionStart string `yaml:"session_start,omitempty"`
	ChatStream   string `yaml:"chat_stream,omitempty"`
	Health       string `yaml:"health,omitempty"`
	SessionInfo  string `yaml:"session_info,omitempty"`
	Direct       string `yaml:"direct,omitempty"`
}

const (
	filename = "config.yaml"

	DefaultBackendURL = "http://localhost:8000"
	DevBackendURL     = "http://localhost:8001"

	// EnvURL overrides the backend URL from the file.
	EnvURL = "LINGO_URL"
)

// ProfileDir returns ~/.lingo, or ~/.lingo/profiles/<profile> for a named
// profile.
func ProfileDir(profile string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locate home directory")
	}
	if profile == "" {
		return filepath.Join(home, ".lingo"), nil
	}
	return filepath.Join(home, ".lingo", "profiles", profile), nil
}

// Load reads <profileDir>/config.yaml and returns the parsed Config.
// If the file is absent or unreadable, a default Config is returned.
// LINGO_URL, when set, wins over the file.
func Load(profileDir string) Config {
	cfg := fromFile(profileDir)
	if u := strings.TrimSpace(os.Getenv(EnvURL)); u != "" {
		cfg.BackendURL = u
	}
	return cfg
}

func fromFile(profileDir string) Config {
	cfg := Defaults()
	data, err := os.ReadFile(filepath.Join(profileDir, filename))
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults()
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultBackendURL
	}
	cfg.Endpoints = cfg.Endpoints.withDefaults()
	return cfg
}

// Save writes cfg to <profileDir>/config.yaml, creating the directory if needed.
func Save(profileDir string, cfg Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return errors.Wrap(err, "create profile dir")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(filepath.Join(profileDir, filename), data, 0o644), "write config")
}

func Defaults() Config {
	return Config{
		BackendURL: DefaultBackendURL,
		Theme:      "",
		LogLevel:   "info",
		WordWrap:   0,
		Endpoints:  Endpoints{}.withDefaults(),
	}
}

// ClientEndpoints converts the settings into the client's path table.
func (e Endpoints) ClientEndpoints() client.Endpoints {
	e = e.withDefaults()
	return client.Endpoints{
		SessionStart: e.SessionStart,
		ChatStream:   e.ChatStream,
		Health:       e.Health,
		SessionInfo:  e.SessionInfo,
		Direct:       e.Direct,
	}
}

func (e Endpoints) withDefaults() Endpoints {
	d := client.DefaultEndpoints()
	if e.SessionStart == "" {
		e.SessionStart = d.SessionStart
	}
	if e.ChatStream == "" {
		e.ChatStream = d.ChatStream
	}
	if e.Health == "" {
		e.Health = d.Health
	}
	if e.SessionInfo == "" {
		e.SessionInfo = d.SessionInfo
	}
	if e.Direct == "" {
		e.Direct = d.Direct
	}
	return e
}
