package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	// EnvConfigPath overrides the settings file location.
	EnvConfigPath = "ERESUS_CONFIG"
	// EnvLogLevel overrides the configured log level.
	EnvLogLevel = "ERESUS_LOG_LEVEL"
)

// Env holds overrides read from the process environment.
type Env struct {
	ConfigPath string
	LogLevel   string
}

// LoadEnv reads a .env file (if present) into the environment and returns the
// tracker overrides.
func LoadEnv(files ...string) Env {
	_ = godotenv.Load(files...) //nolint:errcheck // A missing .env file is normal.

	return Env{
		ConfigPath: os.Getenv(EnvConfigPath),
		LogLevel:   os.Getenv(EnvLogLevel),
	}
}
