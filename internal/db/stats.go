package db

import (
	"context"
)

const insertPlayerMatchStats = `
INSERT INTO player_match_stats (
    player_id, match_id, agent, team_name, rating, acs, kills, deaths, assists,
    kill_death_difference, kast_percentage, adr, headshot_percentage,
    first_kills, first_deaths, first_kill_first_death_difference
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id, match_id) DO NOTHING
`

type InsertPlayerMatchStatsParams struct {
	PlayerID                      int64
	MatchID                       int64
	Agent                         *string
	TeamName                      *string
	Rating                        *float64
	Acs                           *int64
	Kills                         *int64
	Deaths                        *int64
	Assists                       *int64
	KillDeathDifference           *int64
	KastPercentage                *float64
	Adr                           *int64
	HeadshotPercentage            *float64
	FirstKills                    *int64
	FirstDeaths                   *int64
	FirstKillFirstDeathDifference *int64
}

// InsertPlayerMatchStats returns 0 when the (player, match) row already exists.
func (q *Queries) InsertPlayerMatchStats(ctx context.Context, arg InsertPlayerMatchStatsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertPlayerMatchStats,
		arg.PlayerID,
		arg.MatchID,
		arg.Agent,
		arg.TeamName,
		arg.Rating,
		arg.Acs,
		arg.Kills,
		arg.Deaths,
		arg.Assists,
		arg.KillDeathDifference,
		arg.KastPercentage,
		arg.Adr,
		arg.HeadshotPercentage,
		arg.FirstKills,
		arg.FirstDeaths,
		arg.FirstKillFirstDeathDifference,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listStatsForMatch = `
SELECT s.id, s.player_id, s.match_id, s.agent, s.team_name, s.rating, s.acs, s.kills, s.deaths, s.assists,
    s.kill_death_difference, s.kast_percentage, s.adr, s.headshot_percentage,
    s.first_kills, s.first_deaths, s.first_kill_first_death_difference, s.created_at,
    p.name, p.player_source_id
FROM player_match_stats s
JOIN players p ON p.id = s.player_id
WHERE s.match_id = ?
ORDER BY s.team_name, s.acs DESC, s.id
`

type ListStatsForMatchRow struct {
	PlayerMatchStat
	PlayerName     string
	PlayerSourceID *string
}

func (q *Queries) ListStatsForMatch(ctx context.Context, matchID int64) ([]ListStatsForMatchRow, error) {
	rows, err := q.db.QueryContext(ctx, listStatsForMatch, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListStatsForMatchRow
	for rows.Next() {
		var i ListStatsForMatchRow
		if err := rows.Scan(
			&i.ID,
			&i.PlayerID,
			&i.MatchID,
			&i.Agent,
			&i.TeamName,
			&i.Rating,
			&i.Acs,
			&i.Kills,
			&i.Deaths,
			&i.Assists,
			&i.KillDeathDifference,
			&i.KastPercentage,
			&i.Adr,
			&i.HeadshotPercentage,
			&i.FirstKills,
			&i.FirstDeaths,
			&i.FirstKillFirstDeathDifference,
			&i.CreatedAt,
			&i.PlayerName,
			&i.PlayerSourceID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
