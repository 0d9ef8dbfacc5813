// Package config loads the station's environment-variable configuration
// once at startup into a typed struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/b0x42/weatherstation-epaper/internal/display"
)

// Config holds all configuration for the station.
type Config struct {
	Weather  WeatherConfig
	Display  DisplayConfig
	Render   RenderConfig
	Redis    RedisConfig
	LogLevel string

	// UpdateInterval is the pause between render cycles.
	UpdateInterval time.Duration
}

// WeatherConfig holds the Pirate Weather settings.
type WeatherConfig struct {
	APIKey    string
	Latitude  float64
	Longitude float64
	Language  string
	Units     string
}

// TempSymbol returns the unit suffix matching the configured units system.
func (w WeatherConfig) TempSymbol() string {
	if w.Units == "us" {
		return "°F"
	}
	return "°C"
}

// DisplayConfig holds panel selection and backend settings.
type DisplayConfig struct {
	Model        string
	Backend      display.Backend
	EmulatorAddr string
	Flip         bool
}

// RenderConfig holds font locations.
type RenderConfig struct {
	FontPath     string
	IconFontPath string
}

// RedisConfig holds the optional last-rendered-state store settings. An
// empty Addr keeps the state in memory only.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load loads configuration from environment variables, reading a .env file
// first if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Weather: WeatherConfig{
			APIKey:    os.Getenv("PIRATE_WEATHER_API_KEY"),
			Latitude:  getEnvAsFloat("LATITUDE", 52.5200),
			Longitude: getEnvAsFloat("LONGITUDE", 13.4050),
			Language:  getEnv("LANGUAGE", "de"),
			Units:     getEnv("UNITS", "si"),
		},
		Display: DisplayConfig{
			Model:        getEnv("DISPLAY_MODEL", display.DefaultModel),
			Backend:      display.ParseBackend(os.Getenv("USE_EMULATOR")),
			EmulatorAddr: getEnv("EMULATOR_ADDR", "localhost:8175"),
			Flip:         getEnvAsBool("FLIP_DISPLAY", false),
		},
		Render: RenderConfig{
			FontPath:     getEnv("FONT_PATH", "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"),
			IconFontPath: getEnv("ICON_FONT_PATH", "icons/weathericons.ttf"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UpdateInterval: time.Duration(getEnvAsInt("UPDATE_INTERVAL_SECONDS", 1800)) * time.Second,
	}

	if cfg.Weather.APIKey == "" {
		return nil, fmt.Errorf("PIRATE_WEATHER_API_KEY environment variable not set")
	}
	if cfg.UpdateInterval <= 0 {
		return nil, fmt.Errorf("UPDATE_INTERVAL_SECONDS must be positive")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as float64 or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsBool treats any case-insensitive "true" as true.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.EqualFold(strings.TrimSpace(value), "true")
	}
	return defaultValue
}
