package domain

// EventSeriesSeparator joins an event label and its series label in stored event names.
const EventSeriesSeparator = " - "

// MatchSummary is one match as it appears on a matches index page.
type MatchSummary struct {
	SourceID   string `validate:"required,numeric"`
	URL        string `validate:"required,url"`
	Status     MatchStatus
	Team1Name  *string
	Team2Name  *string
	Team1Score *int
	Team2Score *int
	EventName  *string
}

// MatchHeader is the match-level information printed above the stats tables of a detail page.
type MatchHeader struct {
	Team1Name  *string
	Team2Name  *string
	Team1Score *int
	Team2Score *int
	EventName  *string
	Status     MatchStatus
}

// PlayerStat is one player's aggregate line from a detail page. Only these fields are ever
// written to player_match_stats.
type PlayerStat struct {
	PlayerName     string `validate:"required"`
	PlayerSourceID *string
	TeamName       *string
	Agent          *string

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
}

type MatchDetail struct {
	SourceID string
	Header   MatchHeader
	Stats    []PlayerStat
	// true when the "all maps" section was missing and the first map was used instead
	Degraded bool
}

// Inferred carries the reference ids guessed from a match's event name.
type Inferred struct {
	RegionID          *int64
	CompetitionTypeID *int64
}

// MergeResult reports which columns FillForward touched.
type MergeResult struct {
	Changed         []string
	StatusRegressed bool
}

func (r MergeResult) Dirty() bool {
	return len(r.Changed) > 0
}

// FillForward applies a newer sighting of the match. Nullable columns are only set when they
// are currently empty and the sighting carries a value. Status is replaced whenever the new
// one is known and different.
func (m *Match) FillForward(s MatchSummary, inf Inferred) MergeResult {
	var res MergeResult

	if m.URL == nil && s.URL != "" {
		url := s.URL
		m.URL = &url
		res.Changed = append(res.Changed, "match_url")
	}
	fillString(&m.EventName, s.EventName, "event_name", &res)
	fillString(&m.Team1Name, s.Team1Name, "team1_name", &res)
	fillString(&m.Team2Name, s.Team2Name, "team2_name", &res)
	fillInt(&m.Team1Score, s.Team1Score, "team1_score", &res)
	fillInt(&m.Team2Score, s.Team2Score, "team2_score", &res)

	fillID(&m.RegionID, inf.RegionID, "region_id", &res)
	fillID(&m.CompetitionTypeID, inf.CompetitionTypeID, "competition_type_id", &res)

	if s.Status != StatusUnknown && s.Status != "" && s.Status != m.Status {
		if m.Status == StatusCompleted {
			res.StatusRegressed = true
		}
		m.Status = s.Status
		res.Changed = append(res.Changed, "status")
	}

	return res
}

func fillString(dst **string, src *string, column string, res *MergeResult) {
	if *dst != nil || src == nil || *src == "" {
		return
	}
	v := *src
	*dst = &v
	res.Changed = append(res.Changed, column)
}

func fillInt(dst **int, src *int, column string, res *MergeResult) {
	if *dst != nil || src == nil {
		return
	}
	v := *src
	*dst = &v
	res.Changed = append(res.Changed, column)
}

func fillID(dst **int64, src *int64, column string, res *MergeResult) {
	if *dst != nil || src == nil {
		return
	}
	v := *src
	*dst = &v
	res.Changed = append(res.Changed, column)
}

// SummaryFromHeader lets a detail page create or refresh its match the same way a list
// page would.
func SummaryFromHeader(sourceID, url string, h MatchHeader) MatchSummary {
	return MatchSummary{
		SourceID:   sourceID,
		URL:        url,
		Status:     h.Status,
		Team1Name:  h.Team1Name,
		Team2Name:  h.Team2Name,
		Team1Score: h.Team1Score,
		Team2Score: h.Team2Score,
		EventName:  h.EventName,
	}
}
