package config

import (
	"os"
	"strconv"
	"time"

	"unembed/models"

	"go.uber.org/zap"
)

const (
	minRequestTimeout = 10 * time.Second
	maxRequestTimeout = 20 * time.Second
)

var Env = GetDefaultConfig()

func LoadEnv() {
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		Env.LogLevel = value
	}
	if value := os.Getenv("LOG_FILE"); value != "" {
		if logFile, err := strconv.ParseBool(value); err == nil {
			Env.LogFile = logFile
		} else {
			zap.S().Fatal("LOG_FILE env is not a valid boolean")
		}
	}
	if value := os.Getenv("HTTP_PROXY"); value != "" {
		Env.HTTPProxy = value
	}
	if value := os.Getenv("HTTPS_PROXY"); value != "" {
		Env.HTTPSProxy = value
	}
	if value := os.Getenv("NO_PROXY"); value != "" {
		Env.NoProxy = value
	}
	if value := os.Getenv("REQUEST_TIMEOUT"); value != "" {
		if timeout, err := time.ParseDuration(value); err == nil {
			Env.RequestTimeout = clampTimeout(timeout)
		} else {
			zap.S().Fatalf("REQUEST_TIMEOUT env is not a valid duration: %v", err)
		}
	}
	if value := os.Getenv("COOKIES_DIR"); value != "" {
		Env.CookiesDirectory = value
	}
}

// resolution latency is bounded, never user-tunable past the window
func clampTimeout(timeout time.Duration) time.Duration {
	if timeout < minRequestTimeout {
		zap.S().Warnf("REQUEST_TIMEOUT %s below minimum, using %s", timeout, minRequestTimeout)
		return minRequestTimeout
	}
	if timeout > maxRequestTimeout {
		zap.S().Warnf("REQUEST_TIMEOUT %s above maximum, using %s", timeout, maxRequestTimeout)
		return maxRequestTimeout
	}
	return timeout
}

func GetDefaultConfig() *models.EnvConfig {
	return &models.EnvConfig{
		RequestTimeout:   maxRequestTimeout,
		CookiesDirectory: "cookies",
		LogLevel:         "info",
	}
}
