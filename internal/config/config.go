package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Editor   EditorConfig   `toml:"editor"`
	UI       UIConfig       `toml:"ui"`
	Epics    EpicsConfig    `toml:"epics"`
	Server   ServerConfig   `toml:"server"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string           `toml:"level"`
	DevFile DevFileLogConfig `toml:"dev_file"`
}

type DevFileLogConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type EditorConfig struct {
	Command string `toml:"command"`
}

type UIConfig struct {
	TickInterval  string `toml:"tick_interval"`
	MarkdownStyle string `toml:"markdown_style"`
	ShowPreview   bool   `toml:"show_preview"`
}

type EpicsConfig struct {
	DefaultColor string `toml:"default_color"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

var markdownStyles = []string{"ascii", "auto", "dark", "dracula", "light", "notty", "pink", "tokyo-night"}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileLogConfig{
				Enabled: true,
				Dir:     ".stack/log",
			},
		},
		UI: UIConfig{
			TickInterval:  "1s",
			MarkdownStyle: "dark",
			ShowPreview:   true,
		},
		Epics: EpicsConfig{
			DefaultColor: "white",
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.DevFile.Dir = strings.TrimSpace(c.Logging.DevFile.Dir)
	c.Editor.Command = strings.TrimSpace(c.Editor.Command)
	c.UI.TickInterval = strings.TrimSpace(c.UI.TickInterval)
	c.UI.MarkdownStyle = strings.ToLower(strings.TrimSpace(c.UI.MarkdownStyle))
	c.Epics.DefaultColor = strings.ToLower(strings.TrimSpace(c.Epics.DefaultColor))
	c.Server.HTTPBind = strings.TrimSpace(c.Server.HTTPBind)
	c.Server.APIEndpoint = strings.TrimSpace(c.Server.APIEndpoint)
	c.Server.MCPEndpoint = strings.TrimSpace(c.Server.MCPEndpoint)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if !slices.Contains(logLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev file logging is enabled")
	}
	if _, err := c.UI.TickDuration(); err != nil {
		return err
	}
	style := strings.ToLower(strings.TrimSpace(c.UI.MarkdownStyle))
	if !slices.Contains(markdownStyles, style) {
		return fmt.Errorf("invalid ui.markdown_style: %q", c.UI.MarkdownStyle)
	}
	color := strings.TrimSpace(c.Epics.DefaultColor)
	if color == "" || strings.ContainsAny(color, " \t\n") {
		return fmt.Errorf("invalid epics.default_color: %q", c.Epics.DefaultColor)
	}
	api := strings.TrimRight(strings.TrimSpace(c.Server.APIEndpoint), "/")
	mcp := strings.TrimRight(strings.TrimSpace(c.Server.MCPEndpoint), "/")
	if api != "" && api == mcp {
		return fmt.Errorf("server.api_endpoint and server.mcp_endpoint must differ: %q", c.Server.APIEndpoint)
	}
	return nil
}

func (u UIConfig) TickDuration() (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(u.TickInterval))
	if err != nil {
		return 0, fmt.Errorf("invalid ui.tick_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid ui.tick_interval: %q must be positive", u.TickInterval)
	}
	return d, nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func WriteDefault(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
