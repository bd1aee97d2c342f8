package region

import (
	"testing"
	"vct-status/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompetitionInfer(t *testing.T) {
	t.Parallel()

	types := make([]domain.CompetitionType, len(CompetitionSeeds))
	ids := map[string]int64{}
	for i, s := range CompetitionSeeds {
		types[i] = domain.CompetitionType{ID: int64(100 + i), Name: s.Name, Tag: s.Tag}
		ids[s.Tag] = int64(100 + i)
	}
	rules := CompetitionRulesFromTypes(types)
	require.Len(t, rules, 6)

	tests := map[string]string{
		"Champions Tour 2024: Masters Shanghai":       "masters",
		"Champions Tour 2024: Champions Seoul":        "champions",
		"Champions Tour 2024: Americas League":        "intl_league",
		"Challengers League 2024 Korea: Split 1":      "challengers",
		"Game Changers 2024 EMEA: Stage 2":            "game_changers",
		"Champions Tour 2025: EMEA Kickoff Qualifier": "qualifier",
	}
	for event, tag := range tests {
		got := rules.Infer(str(event))
		require.NotNil(t, got, event)
		assert.Equal(t, ids[tag], *got, event)
	}

	assert.Nil(t, rules.Infer(str("Red Bull Home Ground")))
	assert.Nil(t, rules.Infer(nil))
}

func TestInferrer(t *testing.T) {
	t.Parallel()

	inf := Inferrer{
		Regions:      Rules{{Abbreviation: "EMEA", RegionID: 2}},
		Competitions: CompetitionRules{{Keyword: "MASTERS", TypeID: 7}},
	}

	got := inf.Infer(str("EMEA Masters"))
	assert.Equal(t, int64(2), *got.RegionID)
	assert.Equal(t, int64(7), *got.CompetitionTypeID)

	none := inf.Infer(nil)
	assert.Nil(t, none.RegionID)
	assert.Nil(t, none.CompetitionTypeID)
}

func TestInferrerIgnoresSeriesForRegion(t *testing.T) {
	t.Parallel()

	inf := Inferrer{
		Regions:      Rules{{Abbreviation: "PAC", RegionID: 3}, {Abbreviation: "NA", RegionID: 1}},
		Competitions: CompetitionRules{{Keyword: "MASTERS", TypeID: 7}},
	}

	got := inf.Infer(str("Champions Tour 2024: Masters Shanghai - Playoffs–Grand Final"))
	assert.Nil(t, got.RegionID)
	require.NotNil(t, got.CompetitionTypeID)
	assert.Equal(t, int64(7), *got.CompetitionTypeID)

	pacific := inf.Infer(str("VCT 2025: Pacific Stage 2 - Grand Final"))
	require.NotNil(t, pacific.RegionID)
	assert.Equal(t, int64(3), *pacific.RegionID)

	na := inf.Infer(str("Challengers 2025: NA ACE Split 1 - Main Event: Upper Final"))
	require.NotNil(t, na.RegionID)
	assert.Equal(t, int64(1), *na.RegionID)
}
