package db

import (
	"context"
	"time"
)

const matchColumns = `id, match_source_id, match_url, status, match_date, event_name, team1_name, team2_name,
    team1_score, team2_score, region_id, competition_type_id, created_at, updated_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (Match, error) {
	var i Match
	err := row.Scan(
		&i.ID,
		&i.MatchSourceID,
		&i.MatchUrl,
		&i.Status,
		&i.MatchDate,
		&i.EventName,
		&i.Team1Name,
		&i.Team2Name,
		&i.Team1Score,
		&i.Team2Score,
		&i.RegionID,
		&i.CompetitionTypeID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getMatchBySourceID = `
SELECT ` + matchColumns + `
FROM matches
WHERE match_source_id = ?
`

func (q *Queries) GetMatchBySourceID(ctx context.Context, matchSourceID string) (Match, error) {
	return scanMatch(q.db.QueryRowContext(ctx, getMatchBySourceID, matchSourceID))
}

const insertMatch = `
INSERT INTO matches (
    match_source_id, match_url, status, match_date, event_name, team1_name, team2_name,
    team1_score, team2_score, region_id, competition_type_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type InsertMatchParams struct {
	MatchSourceID     string
	MatchUrl          *string
	Status            string
	MatchDate         *time.Time
	EventName         *string
	Team1Name         *string
	Team2Name         *string
	Team1Score        *int64
	Team2Score        *int64
	RegionID          *int64
	CompetitionTypeID *int64
}

func (q *Queries) InsertMatch(ctx context.Context, arg InsertMatchParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertMatch,
		arg.MatchSourceID,
		arg.MatchUrl,
		arg.Status,
		arg.MatchDate,
		arg.EventName,
		arg.Team1Name,
		arg.Team2Name,
		arg.Team1Score,
		arg.Team2Score,
		arg.RegionID,
		arg.CompetitionTypeID,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateMatch = `
UPDATE matches SET
    match_url = ?,
    status = ?,
    match_date = ?,
    event_name = ?,
    team1_name = ?,
    team2_name = ?,
    team1_score = ?,
    team2_score = ?,
    region_id = ?,
    competition_type_id = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdateMatchParams struct {
	MatchUrl          *string
	Status            string
	MatchDate         *time.Time
	EventName         *string
	Team1Name         *string
	Team2Name         *string
	Team1Score        *int64
	Team2Score        *int64
	RegionID          *int64
	CompetitionTypeID *int64
	ID                int64
}

func (q *Queries) UpdateMatch(ctx context.Context, arg UpdateMatchParams) error {
	_, err := q.db.ExecContext(ctx, updateMatch,
		arg.MatchUrl,
		arg.Status,
		arg.MatchDate,
		arg.EventName,
		arg.Team1Name,
		arg.Team2Name,
		arg.Team1Score,
		arg.Team2Score,
		arg.RegionID,
		arg.CompetitionTypeID,
		arg.ID,
	)
	return err
}

const countStatsForMatch = `
SELECT COUNT(*) FROM player_match_stats WHERE match_id = ?
`

func (q *Queries) CountStatsForMatch(ctx context.Context, matchID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countStatsForMatch, matchID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
