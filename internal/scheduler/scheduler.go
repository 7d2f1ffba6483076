package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/weather"
)

// Refresher re-runs the query for the current city selection.
type Refresher interface {
	Selected() string
	Refresh(ctx context.Context) weather.QueryState
}

// Scheduler periodically refreshes the selected city.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
	log       *zap.Logger
}

// New creates a new Scheduler. timeout bounds each refresh run.
func New(target Refresher, interval, timeout time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		timeout:   timeout,
		log:       log.Named("scheduler"),
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
// A non-positive interval leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info("periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Info("periodic refresh started", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) run() {
	city := s.target.Selected()
	if city == "" {
		s.log.Debug("no city selected; skipping refresh")
		return
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	st := s.target.Refresh(ctx)
	s.log.Info("refreshed weather",
		zap.String("city", city),
		zap.String("status", string(st.Status)),
		zap.String("query_id", st.QueryID),
	)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}
