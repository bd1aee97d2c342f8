package repository

import (
	"context"
	"database/sql"
	"vct-status/internal/db"
	"vct-status/internal/domain"

	crerr "github.com/cockroachdb/errors"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RunRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewRunRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *RunRepository {
	return &RunRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *RunRepository) Start(ctx context.Context, kind domain.RunKind, target string) (*domain.ScrapeRun, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, crerr.Wrap(err, "failed to generate run id")
	}

	if err := r.queries.InsertScrapeRun(ctx, db.InsertScrapeRunParams{
		ID:     id,
		Kind:   string(kind),
		Target: target,
	}); err != nil {
		return nil, crerr.Wrap(err, "failed to record scrape run")
	}

	return &domain.ScrapeRun{ID: id, Kind: kind, Target: target, Status: domain.RunStatusRunning}, nil
}

func (r *RunRepository) Finish(ctx context.Context, run *domain.ScrapeRun) error {
	return r.queries.FinishScrapeRun(ctx, db.FinishScrapeRunParams{
		Status:         string(run.Status),
		PagesFetched:   int64(run.PagesFetched),
		PagesFailed:    int64(run.PagesFailed),
		RecordsSeen:    int64(run.RecordsSeen),
		RecordsWritten: int64(run.RecordsWritten),
		RecordsFailed:  int64(run.RecordsFailed),
		Error:          run.Error,
		ID:             run.ID,
	})
}

func (r *RunRepository) Get(ctx context.Context, id string) (*domain.ScrapeRun, error) {
	row, err := r.queries.GetScrapeRun(ctx, id)
	if crerr.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to get scrape run %s", id)
	}

	return &domain.ScrapeRun{
		ID:             row.ID,
		Kind:           domain.RunKind(row.Kind),
		Target:         row.Target,
		Status:         domain.RunStatus(row.Status),
		PagesFetched:   int(row.PagesFetched),
		PagesFailed:    int(row.PagesFailed),
		RecordsSeen:    int(row.RecordsSeen),
		RecordsWritten: int(row.RecordsWritten),
		RecordsFailed:  int(row.RecordsFailed),
		Error:          row.Error,
		StartedAt:      row.StartedAt,
		FinishedAt:     row.FinishedAt,
	}, nil
}
