package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	logLevelVar       = "LOG_LEVEL"
	apiConfigVar      = "QUANT_API_CONFIG"
	authBaseURLVar    = "AUTH_BASE_URL"
	stockBaseURLVar   = "STOCK_BASE_URL"
	requestTimeoutVar = "REQUEST_TIMEOUT"
	storageBackendVar = "STORAGE_BACKEND"
	storagePathVar    = "STORAGE_PATH"
	otlpEndpointVar   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	otlpInsecureVar   = "OTEL_EXPORTER_OTLP_INSECURE"
)

const (
	StorageBackendFile   = "file"
	StorageBackendSQLite = "sqlite"
)

const defaultRequestTimeout = 30 * time.Second

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ ServiceConfig = EnvVars{}
var _ StorageConfig = EnvVars{}
var _ TelemetryConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Quant Trader")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

func (EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelVar, "info"))
}

// GetAPIConfig returns the build-time stock history backend selection
// (e.g. "PYTHON_DIRECT"). Empty means no selection.
func (EnvVars) GetAPIConfig() string {
	return GetEnv(apiConfigVar, "")
}

func (EnvVars) GetAuthBaseURL() string {
	return GetEnv(authBaseURLVar, "http://localhost:8080/api/v1")
}

func (EnvVars) GetStockBaseURL() string {
	return GetEnv(stockBaseURLVar, "http://localhost:8082/stock-service/api/v1")
}

// GetRequestTimeout parses REQUEST_TIMEOUT as a Go duration ("45s").
// Invalid or non-positive values fall back to 30s.
func (EnvVars) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(requestTimeoutVar, ""))
	if err != nil || d <= 0 {
		return defaultRequestTimeout
	}
	return d
}

func (EnvVars) GetStorageBackend() string {
	return strings.ToLower(GetEnv(storageBackendVar, StorageBackendFile))
}

// GetStoragePath returns where the client keeps its persisted state. The
// default lives under the user config dir and its extension follows the backend.
func (e EnvVars) GetStoragePath() string {
	if p := GetEnv(storagePathVar, ""); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	name := "state.json"
	if e.GetStorageBackend() == StorageBackendSQLite {
		name = "state.db"
	}
	return filepath.Join(dir, "quant-web-client", name)
}

func (EnvVars) GetOTLPEndpoint() string {
	return GetEnv(otlpEndpointVar, "")
}

func (EnvVars) GetOTLPInsecure() bool {
	return GetEnv(otlpInsecureVar, "") == "true"
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
