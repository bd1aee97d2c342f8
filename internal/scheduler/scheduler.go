// Package scheduler re-runs the match list scrape on a cron schedule for the watch command.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"vct-status/internal/config"
	"vct-status/internal/service"

	crerr "github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type ListScraper interface {
	ScrapeMatchList(ctx context.Context) (*service.ListReport, error)
}

// Scheduler owns one cron job. A tick that fires while the previous scrape is still running is
// dropped.
type Scheduler struct {
	cron    *cron.Cron
	job     cron.Job
	scraper ListScraper
	logger  zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	initial sync.WaitGroup
	runs    atomic.Int64
}

func New(scraper ListScraper, logger zerolog.Logger) *Scheduler {
	log := cronLogger{logger: logger.With().Str("component", "scheduler").Logger()}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(log), cron.WithChain(cron.Recover(log))),
		scraper: scraper,
		logger:  log.logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.job = cron.NewChain(cron.SkipIfStillRunning(log)).Then(cron.FuncJob(s.scrape))
	return s
}

// Start registers the job under schedule (standard five-field cron or a descriptor such as
// "@every 30m"), kicks off one immediate run and starts ticking.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddJob(schedule, s.job); err != nil {
		return crerr.Wrapf(err, "invalid schedule %q", schedule)
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("scheduler started")

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.job.Run()
	}()
	return nil
}

// Stop cancels an in-flight scrape and waits for it to return, or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	stopped := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.initial.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Int64("runs", s.runs.Load()).Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return crerr.Wrap(ctx.Err(), "scheduler did not stop in time")
	}
}

// Runs is the number of scrapes that actually ran.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

func (s *Scheduler) scrape() {
	if s.ctx.Err() != nil {
		return
	}
	n := s.runs.Add(1)

	report, err := s.scraper.ScrapeMatchList(s.ctx)
	if err != nil {
		s.logger.Error().Err(err).Int64("run", n).Msg("scheduled list scrape failed")
		return
	}

	event := s.logger.Info().Int64("run", n)
	if report.Run != nil {
		event = event.Str("run_id", report.Run.ID).Str("status", string(report.Run.Status))
	}
	event.Msg("scheduled list scrape finished")
}

// Register ties the scheduler to the fx lifecycle of the watch command.
func Register(lc fx.Lifecycle, s *Scheduler, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return s.Start(cfg.WatchSchedule)
		},
		OnStop: s.Stop,
	})
}

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
