package repository

import (
	"context"
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// ReadRepository serves the read-only HTTP views straight into tagged structs.
type ReadRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

func NewReadRepository(sqlxDB *sqlx.DB, logger zerolog.Logger) *ReadRepository {
	return &ReadRepository{db: sqlxDB, logger: logger}
}

type MatchView struct {
	ID              int64      `db:"id" json:"id"`
	SourceID        string     `db:"match_source_id" json:"source_id"`
	URL             *string    `db:"match_url" json:"url,omitempty"`
	Status          string     `db:"status" json:"status"`
	MatchDate       *time.Time `db:"match_date" json:"match_date,omitempty"`
	EventName       *string    `db:"event_name" json:"event_name,omitempty"`
	Team1Name       *string    `db:"team1_name" json:"team1_name,omitempty"`
	Team2Name       *string    `db:"team2_name" json:"team2_name,omitempty"`
	Team1Score      *int64     `db:"team1_score" json:"team1_score,omitempty"`
	Team2Score      *int64     `db:"team2_score" json:"team2_score,omitempty"`
	Region          *string    `db:"region" json:"region,omitempty"`
	CompetitionType *string    `db:"competition_type" json:"competition_type,omitempty"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type StatView struct {
	PlayerID           int64    `db:"player_id" json:"player_id"`
	PlayerName         string   `db:"player_name" json:"player"`
	PlayerSourceID     *string  `db:"player_source_id" json:"player_source_id,omitempty"`
	Agent              *string  `db:"agent" json:"agent,omitempty"`
	TeamName           *string  `db:"team_name" json:"team,omitempty"`
	Rating             *float64 `db:"rating" json:"rating,omitempty"`
	ACS                *int64   `db:"acs" json:"acs,omitempty"`
	Kills              *int64   `db:"kills" json:"kills,omitempty"`
	Deaths             *int64   `db:"deaths" json:"deaths,omitempty"`
	Assists            *int64   `db:"assists" json:"assists,omitempty"`
	KillDeathDiff      *int64   `db:"kill_death_difference" json:"kd_diff,omitempty"`
	KASTPercentage     *float64 `db:"kast_percentage" json:"kast,omitempty"`
	ADR                *int64   `db:"adr" json:"adr,omitempty"`
	HeadshotPercentage *float64 `db:"headshot_percentage" json:"hs,omitempty"`
	FirstKills         *int64   `db:"first_kills" json:"first_kills,omitempty"`
	FirstDeaths        *int64   `db:"first_deaths" json:"first_deaths,omitempty"`
	FirstKillDeathDiff *int64   `db:"first_kill_first_death_difference" json:"fk_diff,omitempty"`
}

type PlayerView struct {
	ID       int64   `db:"id" json:"id"`
	SourceID *string `db:"player_source_id" json:"source_id,omitempty"`
	Name     string  `db:"name" json:"name"`
}

// PlayerMatchView is one match of a player together with that player's line.
type PlayerMatchView struct {
	MatchView
	StatView
}

const matchColumns = `
	m.id, m.match_source_id, m.match_url, m.status, m.match_date, m.event_name,
	m.team1_name, m.team2_name, m.team1_score, m.team2_score,
	r.abbreviation AS region, c.tag AS competition_type, m.updated_at`

const matchJoins = `
	FROM matches m
	LEFT JOIN regions r ON r.id = m.region_id
	LEFT JOIN competition_types c ON c.id = m.competition_type_id`

const statColumns = `
	s.player_id, p.name AS player_name, p.player_source_id, s.agent, s.team_name, s.rating,
	s.acs, s.kills, s.deaths, s.assists, s.kill_death_difference, s.kast_percentage, s.adr,
	s.headshot_percentage, s.first_kills, s.first_deaths, s.first_kill_first_death_difference`

// ListMatches returns the most recently touched matches first. An empty status lists every
// status.
func (r *ReadRepository) ListMatches(ctx context.Context, status string, limit int) ([]MatchView, error) {
	query := `SELECT` + matchColumns + matchJoins + `
	WHERE (? = '' OR m.status = ?)
	ORDER BY m.updated_at DESC, m.id DESC
	LIMIT ?`

	matches := []MatchView{}
	if err := r.db.SelectContext(ctx, &matches, query, status, status, limit); err != nil {
		return nil, crerr.Wrap(err, "failed to list matches")
	}
	return matches, nil
}

// GetMatch returns nil when no match has sourceID.
func (r *ReadRepository) GetMatch(ctx context.Context, sourceID string) (*MatchView, error) {
	query := `SELECT` + matchColumns + matchJoins + `
	WHERE m.match_source_id = ?`

	var m MatchView
	err := r.db.GetContext(ctx, &m, query, sourceID)
	if crerr.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to get match %s", sourceID)
	}
	return &m, nil
}

func (r *ReadRepository) ListMatchStats(ctx context.Context, matchID int64) ([]StatView, error) {
	query := `SELECT` + statColumns + `
	FROM player_match_stats s
	JOIN players p ON p.id = s.player_id
	WHERE s.match_id = ?
	ORDER BY s.team_name, s.acs DESC, s.id`

	stats := []StatView{}
	if err := r.db.SelectContext(ctx, &stats, query, matchID); err != nil {
		return nil, crerr.Wrapf(err, "failed to list stats for match %d", matchID)
	}
	return stats, nil
}

// GetPlayer looks a player up by the id the source site gives it. nil when unknown.
func (r *ReadRepository) GetPlayer(ctx context.Context, sourceID string) (*PlayerView, error) {
	var p PlayerView
	err := r.db.GetContext(ctx, &p, `SELECT id, player_source_id, name FROM players WHERE player_source_id = ?`, sourceID)
	if crerr.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to get player %s", sourceID)
	}
	return &p, nil
}

func (r *ReadRepository) ListPlayerMatches(ctx context.Context, playerID int64, limit int) ([]PlayerMatchView, error) {
	query := `SELECT` + matchColumns + `,` + statColumns + matchJoins + `
	JOIN player_match_stats s ON s.match_id = m.id
	JOIN players p ON p.id = s.player_id
	WHERE s.player_id = ?
	ORDER BY m.updated_at DESC, m.id DESC
	LIMIT ?`

	rows := []PlayerMatchView{}
	if err := r.db.SelectContext(ctx, &rows, query, playerID, limit); err != nil {
		return nil, crerr.Wrapf(err, "failed to list matches of player %d", playerID)
	}
	return rows, nil
}
