package config

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Load reads the optional .env file, the environment and the optional
// per-extractor YAML config. The engine runs fine with none present.
func Load() {
	if err := godotenv.Load(); err != nil {
		zap.S().Debug("no .env file found, using environment only")
	}
	LoadEnv()
	if err := LoadExtractorConfigs(); err != nil {
		zap.S().Fatalf("failed to load extractor configs: %v", err)
	}
}
