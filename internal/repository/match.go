package repository

import (
	"context"
	"database/sql"
	"vct-status/internal/db"
	"vct-status/internal/domain"
	"vct-status/internal/region"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// BatchResult counts what happened to each summary of one list page.
type BatchResult struct {
	Seen      int
	Created   int
	Updated   int
	Unchanged int
	Failed    int
}

func (b BatchResult) Written() int {
	return b.Created + b.Updated
}

// DetailResult counts what one detail page ingestion did.
type DetailResult struct {
	MatchID        int64
	MatchCreated   bool
	PlayersCreated int
	StatsInserted  int
	StatsSkipped   int
	Failed         int
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeCreated
	outcomeUpdated
)

func (r *MatchRepository) GetBySourceID(ctx context.Context, sourceID string) (*domain.Match, error) {
	row, err := r.queries.GetMatchBySourceID(ctx, sourceID)
	if crerr.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to get match %s", sourceID)
	}
	return matchFromRow(row), nil
}

func (r *MatchRepository) CountStats(ctx context.Context, matchID int64) (int, error) {
	count, err := r.queries.CountStatsForMatch(ctx, matchID)
	if err != nil {
		return 0, crerr.Wrapf(err, "failed to count stats for match %d", matchID)
	}
	return int(count), nil
}

// UpsertSummaries writes one page of match summaries in a single transaction. A summary that
// fails is rolled back on its own and counted; only begin/savepoint/commit failures abort the
// batch.
func (r *MatchRepository) UpsertSummaries(ctx context.Context, summaries []domain.MatchSummary, inferrer region.Inferrer) (BatchResult, error) {
	var res BatchResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, crerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for _, summary := range summaries {
		res.Seen++

		var out outcome
		recordErr, err := withSavepoint(ctx, tx, func() error {
			var upsertErr error
			out, _, upsertErr = r.upsertSummary(ctx, qtx, summary, inferrer)
			return upsertErr
		})
		if err != nil {
			return res, err
		}
		if recordErr != nil {
			res.Failed++
			r.logger.Error().Err(recordErr).Str("match_source_id", summary.SourceID).Msg("failed to upsert match, skipping")
			continue
		}

		switch out {
		case outcomeCreated:
			res.Created++
		case outcomeUpdated:
			res.Updated++
		default:
			res.Unchanged++
		}
	}

	if err := tx.Commit(); err != nil {
		return res, crerr.Wrap(err, "failed to commit match batch")
	}
	return res, nil
}

// IngestDetail makes sure the match exists, then stores every player line that is not stored
// yet. Everything commits together.
func (r *MatchRepository) IngestDetail(ctx context.Context, detail *domain.MatchDetail, url string, inferrer region.Inferrer) (DetailResult, error) {
	var res DetailResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, crerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	summary := domain.SummaryFromHeader(detail.SourceID, url, detail.Header)
	out, match, err := r.upsertSummary(ctx, qtx, summary, inferrer)
	if err != nil {
		return res, crerr.Wrapf(err, "failed to upsert match %s", detail.SourceID)
	}
	res.MatchID = match.ID
	res.MatchCreated = out == outcomeCreated

	for _, stat := range detail.Stats {
		var inserted, playerCreated bool
		recordErr, err := withSavepoint(ctx, tx, func() error {
			playerID, created, resolveErr := resolvePlayer(ctx, qtx, stat)
			if resolveErr != nil {
				return resolveErr
			}
			playerCreated = created

			n, insertErr := qtx.InsertPlayerMatchStats(ctx, statsParams(playerID, match.ID, stat))
			if insertErr != nil {
				return crerr.Wrap(insertErr, "failed to insert player stats")
			}
			inserted = n > 0
			return nil
		})
		if err != nil {
			return res, err
		}
		if recordErr != nil {
			res.Failed++
			r.logger.Error().
				Err(recordErr).
				Str("match_source_id", detail.SourceID).
				Str("player", stat.PlayerName).
				Msg("failed to store player stats, skipping")
			continue
		}

		if playerCreated {
			res.PlayersCreated++
		}
		if inserted {
			res.StatsInserted++
		} else {
			res.StatsSkipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return res, crerr.Wrapf(err, "failed to commit match %s", detail.SourceID)
	}
	return res, nil
}

func (r *MatchRepository) upsertSummary(ctx context.Context, q *db.Queries, s domain.MatchSummary, inferrer region.Inferrer) (outcome, *domain.Match, error) {
	row, err := q.GetMatchBySourceID(ctx, s.SourceID)
	if crerr.Is(err, sql.ErrNoRows) {
		inferred := inferrer.Infer(s.EventName)
		m := &domain.Match{
			SourceID:          s.SourceID,
			URL:               optionalURL(s.URL),
			Status:            s.Status,
			EventName:         s.EventName,
			Team1Name:         s.Team1Name,
			Team2Name:         s.Team2Name,
			Team1Score:        s.Team1Score,
			Team2Score:        s.Team2Score,
			RegionID:          inferred.RegionID,
			CompetitionTypeID: inferred.CompetitionTypeID,
		}
		if m.Status == "" {
			m.Status = domain.StatusUnknown
		}

		id, err := q.InsertMatch(ctx, db.InsertMatchParams{
			MatchSourceID:     m.SourceID,
			MatchUrl:          m.URL,
			Status:            string(m.Status),
			MatchDate:         m.MatchDate,
			EventName:         m.EventName,
			Team1Name:         m.Team1Name,
			Team2Name:         m.Team2Name,
			Team1Score:        int64Ptr(m.Team1Score),
			Team2Score:        int64Ptr(m.Team2Score),
			RegionID:          m.RegionID,
			CompetitionTypeID: m.CompetitionTypeID,
		})
		if err != nil {
			return outcomeUnchanged, nil, crerr.Wrapf(err, "failed to insert match %s", s.SourceID)
		}
		m.ID = id

		r.logger.Debug().Str("match_source_id", s.SourceID).Str("status", string(m.Status)).Msg("match created")
		return outcomeCreated, m, nil
	}
	if err != nil {
		return outcomeUnchanged, nil, crerr.Wrapf(err, "failed to look up match %s", s.SourceID)
	}

	m := matchFromRow(row)
	event := m.EventName
	if event == nil {
		event = s.EventName
	}
	merge := m.FillForward(s, inferrer.Infer(event))
	if merge.StatusRegressed {
		r.logger.Warn().Str("match_source_id", s.SourceID).Str("status", string(m.Status)).Msg("completed match changed status")
	}
	if !merge.Dirty() {
		return outcomeUnchanged, m, nil
	}

	err = q.UpdateMatch(ctx, db.UpdateMatchParams{
		MatchUrl:          m.URL,
		Status:            string(m.Status),
		MatchDate:         m.MatchDate,
		EventName:         m.EventName,
		Team1Name:         m.Team1Name,
		Team2Name:         m.Team2Name,
		Team1Score:        int64Ptr(m.Team1Score),
		Team2Score:        int64Ptr(m.Team2Score),
		RegionID:          m.RegionID,
		CompetitionTypeID: m.CompetitionTypeID,
		ID:                m.ID,
	})
	if err != nil {
		return outcomeUnchanged, nil, crerr.Wrapf(err, "failed to update match %s", s.SourceID)
	}

	r.logger.Debug().Str("match_source_id", s.SourceID).Strs("changed", merge.Changed).Msg("match updated")
	return outcomeUpdated, m, nil
}

func optionalURL(url string) *string {
	if url == "" {
		return nil
	}
	return &url
}

// withSavepoint runs fn inside a savepoint of tx. fn's error is returned as recordErr after the
// savepoint has been rolled back; fatalErr means the transaction itself is no longer usable.
func withSavepoint(ctx context.Context, tx *sql.Tx, fn func() error) (recordErr, fatalErr error) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT record"); err != nil {
		return nil, crerr.Wrap(err, "failed to open savepoint")
	}

	if recordErr = fn(); recordErr != nil {
		if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT record"); err != nil {
			return recordErr, crerr.Wrap(err, "failed to roll back savepoint")
		}
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT record"); err != nil {
		return recordErr, crerr.Wrap(err, "failed to release savepoint")
	}
	return recordErr, nil
}
