package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/b0x42/weatherstation-epaper/internal/config"
	"github.com/b0x42/weatherstation-epaper/internal/display"
	"github.com/b0x42/weatherstation-epaper/internal/render"
	"github.com/b0x42/weatherstation-epaper/internal/station"
	"github.com/b0x42/weatherstation-epaper/internal/store"
	"github.com/b0x42/weatherstation-epaper/internal/weather"
)

func main() {
	// Load configuration first; the log level depends on it.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Resolve the panel driver through the loader. This validates the model
	// and the selected backend before anything touches hardware.
	driver, desc, err := display.NewDriver(cfg.Display.Model, display.Options{
		Backend:         cfg.Display.Backend,
		EmulatorAddr:    cfg.Display.EmulatorAddr,
		EmulatorRefresh: time.Second,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal("Failed to set up display", zap.Error(err))
	}
	defer driver.Close()

	logger.Info("Display ready",
		zap.String("model", desc.Model),
		zap.String("backend", cfg.Display.Backend.String()),
		zap.Int("width", desc.WidthPx),
		zap.Int("height", desc.HeightPx),
		zap.Bool("has_red", desc.HasRedChannel))

	// Last-rendered state: Redis when configured, in-memory otherwise.
	states := newStateStore(cfg, logger)
	defer states.Close()

	// Fonts and icon mapping for the renderer.
	textFont, err := render.LoadTTF(cfg.Render.FontPath)
	if err != nil {
		logger.Fatal("Failed to load text font", zap.Error(err))
	}
	iconFont, err := render.LoadTTF(cfg.Render.IconFontPath)
	if err != nil {
		logger.Fatal("Failed to load icon font", zap.Error(err))
	}
	icons, err := render.LoadIcons()
	if err != nil {
		logger.Fatal("Failed to load icon mapping", zap.Error(err))
	}

	renderer := render.New(textFont, iconFont, icons, render.Options{
		TempSymbol: cfg.Weather.TempSymbol(),
		Flip:       cfg.Display.Flip,
		Logger:     logger,
	})

	httpClient := &http.Client{Timeout: 30 * time.Second}
	provider := weather.NewPirateWeather(
		httpClient, cfg.Weather.APIKey, cfg.Weather.Units, cfg.Weather.Language)

	st := station.New(
		driver,
		desc,
		provider,
		renderer,
		states,
		weather.Location{Lat: cfg.Weather.Latitude, Lon: cfg.Weather.Longitude},
		cfg.UpdateInterval,
		logger,
	)

	if err := st.Start(); err != nil {
		logger.Fatal("Failed to start station", zap.Error(err))
	}

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	st.Stop()
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newStateStore(cfg *config.Config, logger *zap.Logger) store.Store {
	if cfg.Redis.Addr == "" {
		return store.NewMemoryStore()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rs, err := store.NewRedisStore(ctx, store.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis state store unavailable, falling back to memory",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err))
		return store.NewMemoryStore()
	}

	logger.Info("Using Redis state store", zap.String("addr", cfg.Redis.Addr))
	return rs
}
