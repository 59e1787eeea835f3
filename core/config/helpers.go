package config

import (
	"os"
	"strconv"
	"strings"
)

// GetAllSettings returns a map of the settings currently loaded in memory,
// with credentials masked. Used by the admin stats endpoint.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_version":          Global.App.Version,
		"app_debug":            Global.App.Debug,
		"db_driver":            Global.Database.Driver,
		"video_delete_delay":   Global.Delivery.DeleteDelaySecs,
		"broadcast_pause_ms":   Global.Delivery.BroadcastPauseMs,
		"resolve_timeout_secs": Global.Upstream.ResolveTimeoutSecs,
		"admin_count":          len(Global.Telegram.AdminIDs),
		"update_worker_pool":   Global.WorkerPool.Size,
		"update_worker_queue":  Global.WorkerPool.QueueSize,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}
