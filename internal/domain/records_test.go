package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestParseMatchStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]MatchStatus{
		"final":     StatusCompleted,
		"  FINAL ":  StatusCompleted,
		"Completed": StatusCompleted,
		"LIVE":      StatusLive,
		"Upcoming":  StatusUpcoming,
		"TBD":       StatusUpcoming,
		"":          StatusUnknown,
		"postponed": StatusUnknown,
		"completed": StatusCompleted,
		"unknown":   StatusUnknown,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseMatchStatus(raw), "raw %q", raw)
	}
}

func TestFillForwardSetsEmptyFields(t *testing.T) {
	t.Parallel()

	m := Match{SourceID: "1", Status: StatusUpcoming}
	res := m.FillForward(MatchSummary{
		SourceID:  "1",
		URL:       "https://vlr.gg/1/a-vs-b",
		EventName: ptr("Champions"),
		Team1Name: ptr("A"),
	}, Inferred{RegionID: ptr(int64(3)), CompetitionTypeID: ptr(int64(4))})

	assert.Equal(t, "Champions", *m.EventName)
	assert.Equal(t, "A", *m.Team1Name)
	assert.Equal(t, int64(3), *m.RegionID)
	assert.Equal(t, int64(4), *m.CompetitionTypeID)
	assert.Equal(t, StatusUpcoming, m.Status, "unknown status leaves the stored one")
	assert.ElementsMatch(t, []string{"match_url", "event_name", "team1_name", "region_id", "competition_type_id"}, res.Changed)
	assert.False(t, res.StatusRegressed)
}

func TestFillForwardNeverClobbers(t *testing.T) {
	t.Parallel()

	m := Match{SourceID: "1", Status: StatusLive, EventName: ptr("Champions"), Team1Score: ptr(1), RegionID: ptr(int64(2))}
	res := m.FillForward(MatchSummary{
		SourceID:   "1",
		Status:     StatusCompleted,
		EventName:  ptr("Masters"),
		Team1Score: ptr(2),
		Team2Score: ptr(0),
	}, Inferred{RegionID: ptr(int64(9))})

	assert.Equal(t, "Champions", *m.EventName)
	assert.Equal(t, 1, *m.Team1Score)
	assert.Equal(t, 0, *m.Team2Score)
	assert.Equal(t, int64(2), *m.RegionID)
	assert.Equal(t, StatusCompleted, m.Status)
	assert.ElementsMatch(t, []string{"team2_score", "status"}, res.Changed)
}

func TestFillForwardStatusRegression(t *testing.T) {
	t.Parallel()

	m := Match{SourceID: "1", Status: StatusCompleted}
	res := m.FillForward(MatchSummary{SourceID: "1", Status: StatusLive}, Inferred{})

	assert.Equal(t, StatusLive, m.Status)
	assert.True(t, res.StatusRegressed)

	same := m.FillForward(MatchSummary{SourceID: "1", Status: StatusLive}, Inferred{})
	assert.False(t, same.Dirty())
}

func TestFillForwardIgnoresEmptyStrings(t *testing.T) {
	t.Parallel()

	m := Match{SourceID: "1", Status: StatusUnknown}
	res := m.FillForward(MatchSummary{SourceID: "1", EventName: ptr("")}, Inferred{})

	assert.Nil(t, m.EventName)
	assert.False(t, res.Dirty())
}
