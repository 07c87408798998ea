package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	ServiceConfig
	StorageConfig
	TelemetryConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type ServiceConfig interface {
	GetAPIConfig() string
	GetAuthBaseURL() string
	GetStockBaseURL() string
	GetRequestTimeout() time.Duration
}

type StorageConfig interface {
	GetStorageBackend() string
	GetStoragePath() string
}

type TelemetryConfig interface {
	GetOTLPEndpoint() string
	GetOTLPInsecure() bool
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}

// Load reads the given dotenv files (".env" when none are given) into the
// process environment and returns the env-backed Config. Variables already
// set in the environment are not overridden. Missing files are ignored.
func Load(files ...string) Config {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Strs("files", files).Msg("failed to load dotenv files")
	}
	return New()
}
