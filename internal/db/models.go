package db

import (
	"time"
)

type Region struct {
	ID                int64
	Name              string
	Tag               string
	Abbreviation      string
	InferencePriority int64
	CreatedAt         time.Time
}

type CompetitionType struct {
	ID          int64
	Name        string
	Tag         string
	Description *string
	CreatedAt   time.Time
}

type Match struct {
	ID                int64
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
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Player struct {
	ID             int64
	PlayerSourceID *string
	Name           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type PlayerMatchStat struct {
	ID                            int64
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
	CreatedAt                     time.Time
}

type ScrapeRun struct {
	ID             string
	Kind           string
	Target         string
	Status         string
	PagesFetched   int64
	PagesFailed    int64
	RecordsSeen    int64
	RecordsWritten int64
	RecordsFailed  int64
	Error          *string
	StartedAt      time.Time
	FinishedAt     *time.Time
}
