package db

import (
	"context"
)

const insertScrapeRun = `
INSERT INTO scrape_runs (id, kind, target, status)
VALUES (?, ?, ?, 'running')
`

type InsertScrapeRunParams struct {
	ID     string
	Kind   string
	Target string
}

func (q *Queries) InsertScrapeRun(ctx context.Context, arg InsertScrapeRunParams) error {
	_, err := q.db.ExecContext(ctx, insertScrapeRun, arg.ID, arg.Kind, arg.Target)
	return err
}

const finishScrapeRun = `
UPDATE scrape_runs SET
    status = ?,
    pages_fetched = ?,
    pages_failed = ?,
    records_seen = ?,
    records_written = ?,
    records_failed = ?,
    error = ?,
    finished_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type FinishScrapeRunParams struct {
	Status         string
	PagesFetched   int64
	PagesFailed    int64
	RecordsSeen    int64
	RecordsWritten int64
	RecordsFailed  int64
	Error          *string
	ID             string
}

func (q *Queries) FinishScrapeRun(ctx context.Context, arg FinishScrapeRunParams) error {
	_, err := q.db.ExecContext(ctx, finishScrapeRun,
		arg.Status,
		arg.PagesFetched,
		arg.PagesFailed,
		arg.RecordsSeen,
		arg.RecordsWritten,
		arg.RecordsFailed,
		arg.Error,
		arg.ID,
	)
	return err
}

const getScrapeRun = `
SELECT id, kind, target, status, pages_fetched, pages_failed, records_seen, records_written,
    records_failed, error, started_at, finished_at
FROM scrape_runs
WHERE id = ?
`

func (q *Queries) GetScrapeRun(ctx context.Context, id string) (ScrapeRun, error) {
	row := q.db.QueryRowContext(ctx, getScrapeRun, id)
	var i ScrapeRun
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Target,
		&i.Status,
		&i.PagesFetched,
		&i.PagesFailed,
		&i.RecordsSeen,
		&i.RecordsWritten,
		&i.RecordsFailed,
		&i.Error,
		&i.StartedAt,
		&i.FinishedAt,
	)
	return i, err
}
