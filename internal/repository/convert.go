package repository

import (
	"vct-status/internal/db"
	"vct-status/internal/domain"
)

func int64Ptr(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func intPtr(v *int64) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

func matchFromRow(row db.Match) *domain.Match {
	return &domain.Match{
		ID:                row.ID,
		SourceID:          row.MatchSourceID,
		URL:               row.MatchUrl,
		Status:            domain.MatchStatus(row.Status),
		MatchDate:         row.MatchDate,
		EventName:         row.EventName,
		Team1Name:         row.Team1Name,
		Team2Name:         row.Team2Name,
		Team1Score:        intPtr(row.Team1Score),
		Team2Score:        intPtr(row.Team2Score),
		RegionID:          row.RegionID,
		CompetitionTypeID: row.CompetitionTypeID,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func statsFromRow(row db.PlayerMatchStat) domain.PlayerMatchStats {
	return domain.PlayerMatchStats{
		ID:                 row.ID,
		PlayerID:           row.PlayerID,
		MatchID:            row.MatchID,
		Agent:              row.Agent,
		TeamName:           row.TeamName,
		Rating:             row.Rating,
		ACS:                intPtr(row.Acs),
		Kills:              intPtr(row.Kills),
		Deaths:             intPtr(row.Deaths),
		Assists:            intPtr(row.Assists),
		KillDeathDiff:      intPtr(row.KillDeathDifference),
		KASTPercentage:     row.KastPercentage,
		ADR:                intPtr(row.Adr),
		HeadshotPercentage: row.HeadshotPercentage,
		FirstKills:         intPtr(row.FirstKills),
		FirstDeaths:        intPtr(row.FirstDeaths),
		FirstKillDeathDiff: intPtr(row.FirstKillFirstDeathDifference),
		CreatedAt:          row.CreatedAt,
	}
}

// statsParams copies the whitelisted stat columns of a parsed line.
func statsParams(playerID, matchID int64, s domain.PlayerStat) db.InsertPlayerMatchStatsParams {
	return db.InsertPlayerMatchStatsParams{
		PlayerID:                      playerID,
		MatchID:                       matchID,
		Agent:                         s.Agent,
		TeamName:                      s.TeamName,
		Rating:                        s.Rating,
		Acs:                           int64Ptr(s.ACS),
		Kills:                         int64Ptr(s.Kills),
		Deaths:                        int64Ptr(s.Deaths),
		Assists:                       int64Ptr(s.Assists),
		KillDeathDifference:           int64Ptr(s.KillDeathDiff),
		KastPercentage:                s.KASTPercentage,
		Adr:                           int64Ptr(s.ADR),
		HeadshotPercentage:            s.HeadshotPercentage,
		FirstKills:                    int64Ptr(s.FirstKills),
		FirstDeaths:                   int64Ptr(s.FirstDeaths),
		FirstKillFirstDeathDifference: int64Ptr(s.FirstKillDeathDiff),
	}
}
