package repository

import (
	"context"
	"database/sql"
	"vct-status/internal/db"
	"vct-status/internal/domain"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type StatsRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewStatsRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// PlayerLine is a stored stats row with the name of its player.
type PlayerLine struct {
	PlayerName     string
	PlayerSourceID *string
	Stats          domain.PlayerMatchStats
}

func (r *StatsRepository) ListForMatch(ctx context.Context, matchID int64) ([]PlayerLine, error) {
	rows, err := r.queries.ListStatsForMatch(ctx, matchID)
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to list stats for match %d", matchID)
	}

	lines := make([]PlayerLine, len(rows))
	for i, row := range rows {
		lines[i] = PlayerLine{
			PlayerName:     row.PlayerName,
			PlayerSourceID: row.PlayerSourceID,
			Stats:          statsFromRow(row.PlayerMatchStat),
		}
	}
	return lines, nil
}
