package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment overrides win over the file. They exist for container
// deployments where editing the YAML is awkward.
func (c *Config) applyEnv() {
	if v := getEnvInt("EISENDO_PORT"); v > 0 {
		c.Server.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("EISENDO_DATA_DIR")); v != "" {
		c.Server.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("EISENDO_STATIC_DIR")); v != "" {
		c.Server.StaticDir = v
	}
	if v := strings.TrimSpace(os.Getenv("EISENDO_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("EISENDO_NOTIFY_CRON")); v != "" {
		c.Notifications.Cron = v
	}
	if v := strings.TrimSpace(os.Getenv("EISENDO_ASSIST_MODEL")); v != "" {
		c.Assist.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("EISENDO_HISTORY_PATH")); v != "" {
		c.History.Path = v
	}
	if v, ok := getEnvBool("EISENDO_ASSIST_ENABLED"); ok {
		c.Assist.Enabled = v
	}
	if v, ok := getEnvBool("EISENDO_NOTIFY_ENABLED"); ok {
		c.Notifications.Enabled = v
	}
}

func getEnvInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func getEnvBool(key string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
