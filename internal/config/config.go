package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"eisendo/internal/logx"
)

type Config struct {
	Version       string              `yaml:"version" json:"version"`
	Server        ServerConfig        `yaml:"server" json:"server"`
	Logging       logx.Config         `yaml:"logging" json:"logging"`
	Notifications NotificationsConfig `yaml:"notifications" json:"notifications"`
	Assist        AssistConfig        `yaml:"assist" json:"assist"`
	History       HistoryConfig       `yaml:"history" json:"history"`
}

type ServerConfig struct {
	Port      int    `yaml:"port" json:"port"`
	DataDir   string `yaml:"data_dir" json:"data_dir"`
	StaticDir string `yaml:"static_dir" json:"static_dir"`
	DevStatic bool   `yaml:"dev_static" json:"dev_static"`
}

type NotificationsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Cron is the reminder scan schedule (robfig/cron, standard 5-field).
	Cron string `yaml:"cron" json:"cron"`
	// DaysBefore is how far ahead of a due date reminders start, 0..7.
	DaysBefore int `yaml:"days_before" json:"days_before"`
}

type AssistConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Model   string `yaml:"model" json:"model"`
	// MaxPerMinute caps /api/assist/parse calls; the Gemini quota is the
	// expensive resource behind it.
	MaxPerMinute int `yaml:"max_per_minute" json:"max_per_minute"`
}

type HistoryConfig struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	Path          string `yaml:"path" json:"path"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms" json:"busy_timeout_ms"`
}

func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Port:      8080,
			DataDir:   "data",
			StaticDir: "static",
		},
		Logging: logx.Config{
			Level:   "info",
			Console: true,
		},
		Notifications: NotificationsConfig{
			Enabled:    true,
			Cron:       "0 7 * * *",
			DaysBefore: 1,
		},
		Assist: AssistConfig{
			Enabled:      true,
			Model:        "gemini-2.0-flash",
			MaxPerMinute: 10,
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          "data/history.db",
			BusyTimeoutMS: 5000,
		},
	}
}

func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = d.Server.DataDir
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = d.Server.StaticDir
	}
	if c.Logging.Level == "" {
		c.Logging = d.Logging
	}
	if c.Notifications.Cron == "" {
		c.Notifications.Cron = d.Notifications.Cron
	}
	if c.Notifications.DaysBefore < 0 {
		c.Notifications.DaysBefore = 0
	}
	if c.Notifications.DaysBefore > 7 {
		c.Notifications.DaysBefore = 7
	}
	if c.Assist.Model == "" {
		c.Assist.Model = d.Assist.Model
	}
	if c.Assist.MaxPerMinute <= 0 {
		c.Assist.MaxPerMinute = d.Assist.MaxPerMinute
	}
	if c.History.Path == "" {
		c.History.Path = d.History.Path
	}
	if c.History.BusyTimeoutMS <= 0 {
		c.History.BusyTimeoutMS = d.History.BusyTimeoutMS
	}
}

// Load reads the YAML config, falling back to defaults when the file does not
// exist so a bare checkout still runs.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c := Default()
			c.applyEnv()
			return c, nil
		}
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c.ApplyDefaults()
	c.applyEnv()
	return &c, nil
}
