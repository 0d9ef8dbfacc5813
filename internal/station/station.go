// Package station runs the fetch-render-display loop.
package station

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/b0x42/weatherstation-epaper/internal/display"
	"github.com/b0x42/weatherstation-epaper/internal/render"
	"github.com/b0x42/weatherstation-epaper/internal/store"
	"github.com/b0x42/weatherstation-epaper/internal/weather"
)

// cycleTimeout bounds one full cycle including the panel refresh.
const cycleTimeout = 2 * time.Minute

// Station owns one panel and keeps it showing current weather.
type Station struct {
	driver   display.Driver
	desc     display.Descriptor
	provider weather.Provider
	renderer *render.Renderer
	states   store.Store
	loc      weather.Location
	interval time.Duration

	scheduler *gocron.Scheduler
	logger    *zap.Logger
}

// New wires a station from its collaborators.
func New(
	driver display.Driver,
	desc display.Descriptor,
	provider weather.Provider,
	renderer *render.Renderer,
	states store.Store,
	loc weather.Location,
	interval time.Duration,
	logger *zap.Logger,
) *Station {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Station{
		driver:   driver,
		desc:     desc,
		provider: provider,
		renderer: renderer,
		states:   states,
		loc:      loc,
		interval: interval,
		logger:   logger,
	}
}

// Start schedules the update cycle, running the first one immediately.
// Cycles never overlap; a slow panel refresh delays the next cycle instead.
func (s *Station) Start() error {
	sched := gocron.NewScheduler(time.UTC)

	_, err := sched.Every(s.interval).
		SingletonMode().
		StartImmediately().
		Do(s.runCycle)
	if err != nil {
		return err
	}

	sched.StartAsync()
	s.scheduler = sched

	s.logger.Info("weather station started",
		zap.String("model", s.desc.Model),
		zap.Duration("update_interval", s.interval))
	return nil
}

// Stop halts the schedule, clears the panel and puts it to sleep.
func (s *Station) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	if err := s.driver.Init(ctx); err != nil {
		s.logger.Warn("failed to wake panel for shutdown clear", zap.Error(err))
		return
	}
	if err := s.driver.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear panel on shutdown", zap.Error(err))
	}
	if err := s.driver.Sleep(); err != nil {
		s.logger.Warn("failed to sleep panel on shutdown", zap.Error(err))
	}
	s.logger.Info("weather station stopped")
}

func (s *Station) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	if err := s.Cycle(ctx); err != nil {
		// Fetch or panel errors skip the cycle; the panel keeps its last
		// frame and the supervisor model handles anything persistent.
		s.logger.Error("update cycle failed", zap.Error(err))
	}
}

// Cycle runs one fetch-render-display pass. Unchanged weather data leaves
// the panel untouched.
func (s *Station) Cycle(ctx context.Context) error {
	s.logger.Info("fetching weather data",
		zap.String("provider", s.provider.Name()))

	obs, err := s.provider.Current(ctx, s.loc)
	if err != nil {
		return err
	}

	s.logger.Info("weather data received",
		zap.Int("temperature", obs.Temperature),
		zap.Int("temperature_max", obs.TemperatureMax),
		zap.String("summary", obs.Summary),
		zap.String("icon", obs.Icon))

	current := store.State{
		Temperature:    obs.Temperature,
		TemperatureMax: obs.TemperatureMax,
		Summary:        obs.Summary,
		RenderedAt:     time.Now().UTC(),
	}

	last, ok, err := s.states.Last(ctx)
	if err != nil {
		s.logger.Warn("failed to read last rendered state", zap.Error(err))
	} else if ok && last.Equal(current) {
		s.logger.Info("no change in weather data, display not updated")
		return nil
	}

	// The layout is derived fresh every cycle; it is a pure function of the
	// descriptor.
	layout := display.LayoutFor(s.desc)

	frame, err := s.renderer.Compose(obs, s.desc, layout)
	if err != nil {
		return err
	}

	if err := s.driver.Init(ctx); err != nil {
		return err
	}
	if err := s.driver.Clear(ctx); err != nil {
		return err
	}
	if err := s.driver.Display(ctx, frame.Black, frame.Red); err != nil {
		return err
	}
	if err := s.driver.Sleep(); err != nil {
		s.logger.Warn("failed to sleep panel", zap.Error(err))
	}

	if err := s.states.Save(ctx, current); err != nil {
		s.logger.Warn("failed to persist rendered state", zap.Error(err))
	}

	s.logger.Info("display updated")
	return nil
}
