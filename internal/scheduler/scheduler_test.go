package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"vct-status/internal/domain"
	"vct-status/internal/service"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	calls   atomic.Int64
	started chan struct{}
	release chan struct{}
	err     error
	once    sync.Once
}

func (f *fakeScraper) ScrapeMatchList(ctx context.Context) (*service.ListReport, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &service.ListReport{Run: &domain.ScrapeRun{ID: "run-1", Status: domain.RunStatusOK}}, nil
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{started: make(chan struct{}), release: make(chan struct{})}
	s := New(scraper, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		s.job.Run()
		close(done)
	}()
	<-scraper.started

	// returns at once while the first run holds the job
	s.job.Run()
	assert.EqualValues(t, 1, scraper.calls.Load())

	close(scraper.release)
	<-done

	s.job.Run()
	assert.EqualValues(t, 2, scraper.calls.Load())
	assert.EqualValues(t, 2, s.Runs())
}

func TestFailedRunDoesNotStopScheduler(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{err: crerr.New("boom")}
	s := New(scraper, zerolog.Nop())

	s.job.Run()
	s.job.Run()
	assert.EqualValues(t, 2, scraper.calls.Load())
}

func TestStartRunsImmediately(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{}
	s := New(scraper, zerolog.Nop())
	require.NoError(t, s.Start("@every 1h"))

	require.Eventually(t, func() bool { return scraper.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestStopCancelsRunningScrape(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{started: make(chan struct{}), release: make(chan struct{})}
	s := New(scraper, zerolog.Nop())
	require.NoError(t, s.Start("@every 1h"))
	<-scraper.started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	// nothing runs once stopped
	s.job.Run()
	assert.EqualValues(t, 1, scraper.calls.Load())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	s := New(&fakeScraper{}, zerolog.Nop())
	err := s.Start("every so often")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}
