package config

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Paths      PathsConfig
	Database   DatabaseConfig
	Telegram   TelegramConfig
	Upstream   UpstreamConfig
	Delivery   DeliveryConfig
	WorkerPool WorkerPoolConfig
}

type AppConfig struct {
	Version        string
	Port           string
	Debug          bool
	Environment    string
	BasicAuth      []string
	BasePath       string
	TrustedProxies []string
}

type PathsConfig struct {
	Storages string
}

type DatabaseConfig struct {
	Driver          string // "memory", "sqlite", "postgres" or "valkey"
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB name for Postgres
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type TelegramConfig struct {
	BotToken      string
	AdminIDs      []int64
	WebhookSecret string
}

type UpstreamConfig struct {
	UnlockLinkAPI      string
	VideoAPIBase       string
	RedirectPrefix     string
	ResolveTimeoutSecs int
}

type DeliveryConfig struct {
	DeleteDelaySecs  int
	BroadcastPauseMs int
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	var basicAuth []string
	if v := getEnv("APP_BASIC_AUTH", ""); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:     "v1.2.0",
		Port:        getEnv("APP_PORT", "3000"),
		Debug:       getEnvBool("APP_DEBUG", false),
		Environment: getEnv("APP_ENV", "development"),
		BasicAuth:   basicAuth,
		BasePath:    getEnv("APP_BASE_PATH", ""),
	}
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "telebox.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "telebox:"),
	}

	tgCfg := TelegramConfig{
		BotToken:      getEnv("BOT_TOKEN", ""),
		AdminIDs:      parseIDList(getEnv("ADMIN_ID", "")),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
	}
	// The original deployment used the bot token itself as the secret path
	// segment. Keep that as fallback so existing webhooks keep working.
	if tgCfg.WebhookSecret == "" {
		tgCfg.WebhookSecret = tgCfg.BotToken
	}

	upstreamCfg := UpstreamConfig{
		UnlockLinkAPI:      getEnv("ACCESS_LINK_API", ""),
		VideoAPIBase:       getEnv("TERABOX_API_BASE", ""),
		RedirectPrefix:     getEnv("ACCESS_REDIRECT_PREFIX", ""),
		ResolveTimeoutSecs: getEnvInt("RESOLVE_TIMEOUT_SECS", 30),
	}

	// VIDEO_DELETE_DELAY is seconds. One legacy deployment exported it in
	// milliseconds; values that large are normalized instead of armed as-is.
	deleteDelay := getEnvInt("VIDEO_DELETE_DELAY", 20)
	if deleteDelay >= 1000 && deleteDelay%1000 == 0 {
		deleteDelay = deleteDelay / 1000
	}

	deliveryCfg := DeliveryConfig{
		DeleteDelaySecs:  deleteDelay,
		BroadcastPauseMs: getEnvInt("BROADCAST_PAUSE_MS", 50),
	}

	cfg := &Config{
		App:      appCfg,
		Paths:    pathsCfg,
		Database: dbCfg,
		Telegram: tgCfg,
		Upstream: upstreamCfg,
		Delivery: deliveryCfg,
		WorkerPool: WorkerPoolConfig{
			Size:      getEnvInt("UPDATE_WORKER_POOL_SIZE", 8),
			QueueSize: getEnvInt("UPDATE_WORKER_QUEUE_SIZE", 100),
		},
	}

	Global = cfg
	return cfg, nil
}

// parseIDList parses a comma separated list of numeric Telegram identities.
// Malformed entries are dropped; an empty input yields an empty allow-list.
func parseIDList(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
