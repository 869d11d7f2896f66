package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string
	PhotoPath  string
	ExportPath string
	LogLevel   string
	LogFile    string
}

// Load reads configuration from the environment, with an optional .env file
// providing defaults for local development.
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("DB_PATH", "/data/windowlog.db"),
		PhotoPath:  getEnv("PHOTO_PATH", "/data/photos"),
		ExportPath: getEnv("EXPORT_PATH", "/data/exports"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFile:    getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
