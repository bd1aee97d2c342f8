package domain

import (
	"strings"
	"time"
)

type MatchStatus string

const (
	StatusUnknown   MatchStatus = "unknown"
	StatusUpcoming  MatchStatus = "upcoming"
	StatusLive      MatchStatus = "live"
	StatusCompleted MatchStatus = "completed"
)

// ParseMatchStatus maps the free-text status shown on vlr.gg to a MatchStatus.
func ParseMatchStatus(raw string) MatchStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return StatusUnknown
	case strings.Contains(s, "final"), strings.Contains(s, "completed"):
		return StatusCompleted
	case strings.Contains(s, "live"):
		return StatusLive
	case strings.Contains(s, "upcoming"), s == "tbd":
		return StatusUpcoming
	}

	switch MatchStatus(s) {
	case StatusUnknown, StatusUpcoming, StatusLive, StatusCompleted:
		return MatchStatus(s)
	}
	return StatusUnknown
}

type Region struct {
	ID                int64
	Name              string
	Tag               string
	Abbreviation      string
	InferencePriority int
}

type CompetitionType struct {
	ID          int64
	Name        string
	Tag         string
	Description *string
}

type Match struct {
	ID                int64
	SourceID          string
	URL               *string
	Status            MatchStatus
	MatchDate         *time.Time
	EventName         *string
	Team1Name         *string
	Team2Name         *string
	Team1Score        *int
	Team2Score        *int
	RegionID          *int64
	CompetitionTypeID *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Player struct {
	ID        int64
	SourceID  *string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PlayerMatchStats struct {
	ID                 int64
	PlayerID           int64
	MatchID            int64
	Agent              *string
	TeamName           *string
	Rating             *float64
	ACS                *int
	Kills              *int
	Deaths             *int
	Assists            *int
	KillDeathDiff      *int
	KASTPercentage     *float64
	ADR                *int
	HeadshotPercentage *float64
	FirstKills         *int
	FirstDeaths        *int
	FirstKillDeathDiff *int
	CreatedAt          time.Time
}

type RunKind string

const (
	RunKindList   RunKind = "list"
	RunKindDetail RunKind = "detail"
)

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusOK      RunStatus = "ok"
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

type ScrapeRun struct {
	ID             string
	Kind           RunKind
	Target         string
	Status         RunStatus
	PagesFetched   int
	PagesFailed    int
	RecordsSeen    int
	RecordsWritten int
	RecordsFailed  int
	Error          *string
	StartedAt      time.Time
	FinishedAt     *time.Time
}
