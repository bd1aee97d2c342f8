package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"vct-status/internal/database"
	"vct-status/internal/db"
	"vct-status/internal/domain"
	"vct-status/internal/region"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStore struct {
	sqlDB   *sql.DB
	queries *db.Queries
	matches *MatchRepository
	refs    *ReferenceRepository
	runs    *RunRepository
	stats   *StatsRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	logger := zerolog.Nop()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "vct.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	queries := db.New(sqlDB)
	return &testStore{
		sqlDB:   sqlDB,
		queries: queries,
		matches: NewMatchRepository(sqlDB, queries, logger),
		refs:    NewReferenceRepository(sqlDB, queries, logger),
		runs:    NewRunRepository(sqlDB, queries, logger),
		stats:   NewStatsRepository(sqlDB, queries, logger),
	}
}

func (s *testStore) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.sqlDB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func str(v string) *string { return &v }
func num(v int) *int       { return &v }

func TestSeedIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.refs.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(region.Seeds), first.RegionsAdded)
	assert.Equal(t, len(region.CompetitionSeeds), first.CompetitionTypesAdded)

	second, err := s.refs.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.RegionsAdded)
	assert.Zero(t, second.CompetitionTypesAdded)

	counts, err := s.refs.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), counts.Regions)
	assert.Equal(t, int64(8), counts.CompetitionTypes)

	inf, err := s.refs.Inferrer(ctx)
	require.NoError(t, err)
	require.Len(t, inf.Regions, 11)
	assert.Equal(t, "INTL", inf.Regions[0].Abbreviation)
	assert.Equal(t, "NA", inf.Regions[len(inf.Regions)-1].Abbreviation)
}

func TestUpsertSummariesFillForward(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.refs.Seed(ctx)
	require.NoError(t, err)
	inf, err := s.refs.Inferrer(ctx)
	require.NoError(t, err)

	res, err := s.matches.UpsertSummaries(ctx, []domain.MatchSummary{
		{SourceID: "100", URL: "https://www.vlr.gg/100/a-vs-b", Status: domain.StatusUpcoming, Team1Name: str("A")},
		{SourceID: "101", URL: "https://www.vlr.gg/101/c-vs-d", Status: domain.StatusLive, EventName: str("Champions")},
	}, inf)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Seen: 2, Created: 2}, res)

	res, err = s.matches.UpsertSummaries(ctx, []domain.MatchSummary{
		{SourceID: "100", URL: "https://www.vlr.gg/100/a-vs-b", Status: domain.StatusUnknown, EventName: str("Champions")},
		{SourceID: "101", URL: "https://www.vlr.gg/101/c-vs-d", Status: domain.StatusCompleted, EventName: str("Masters"), Team1Score: num(13)},
	}, inf)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Seen: 2, Updated: 2}, res)

	m100, err := s.matches.GetBySourceID(ctx, "100")
	require.NoError(t, err)
	require.NotNil(t, m100.EventName)
	assert.Equal(t, "Champions", *m100.EventName)
	assert.Equal(t, domain.StatusUpcoming, m100.Status, "unknown never overwrites")
	assert.Equal(t, "A", *m100.Team1Name)
	require.NotNil(t, m100.CompetitionTypeID)

	m101, err := s.matches.GetBySourceID(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "Champions", *m101.EventName, "known values are never clobbered")
	assert.Equal(t, domain.StatusCompleted, m101.Status)
	assert.Equal(t, 13, *m101.Team1Score)

	res, err = s.matches.UpsertSummaries(ctx, []domain.MatchSummary{
		{SourceID: "101", URL: "https://www.vlr.gg/101/c-vs-d", Status: domain.StatusCompleted},
	}, inf)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Seen: 1, Unchanged: 1}, res)

	missing, err := s.matches.GetBySourceID(ctx, "999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpsertSummariesIsolatesBadRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// region 999 does not exist, so the insert of a matching match violates its foreign key
	broken := region.Inferrer{Regions: region.Rules{{Abbreviation: "BROKEN", RegionID: 999}}}

	res, err := s.matches.UpsertSummaries(ctx, []domain.MatchSummary{
		{SourceID: "1", URL: "https://www.vlr.gg/1/x", Status: domain.StatusLive},
		{SourceID: "2", URL: "https://www.vlr.gg/2/x", Status: domain.StatusLive, EventName: str("Broken Cup")},
		{SourceID: "3", URL: "https://www.vlr.gg/3/x", Status: domain.StatusLive},
	}, broken)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Seen: 3, Created: 2, Failed: 1}, res)
	assert.Equal(t, 2, s.count(t, "matches"))

	bad, err := s.matches.GetBySourceID(ctx, "2")
	require.NoError(t, err)
	assert.Nil(t, bad)
}

// abortWhen installs a trigger that rolls back the whole surrounding transaction, which no
// savepoint can recover from.
func (s *testStore) abortWhen(t *testing.T, table, condition string) {
	t.Helper()
	_, err := s.sqlDB.Exec(`CREATE TRIGGER abort_batch BEFORE INSERT ON ` + table + `
		WHEN ` + condition + `
		BEGIN SELECT RAISE(ROLLBACK, 'batch aborted'); END`)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = s.sqlDB.Exec(`DROP TRIGGER IF EXISTS abort_batch`) })
}

func TestUpsertSummariesRollsBackWholeBatchOnFatalError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.abortWhen(t, "matches", "NEW.match_source_id = '2'")

	batch := []domain.MatchSummary{
		{SourceID: "1", URL: "https://www.vlr.gg/1/x", Status: domain.StatusLive},
		{SourceID: "2", URL: "https://www.vlr.gg/2/x", Status: domain.StatusLive},
		{SourceID: "3", URL: "https://www.vlr.gg/3/x", Status: domain.StatusLive},
	}
	res, err := s.matches.UpsertSummaries(ctx, batch, region.Inferrer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "savepoint")
	assert.Equal(t, 2, res.Seen, "the batch stops at the failing record")
	assert.Equal(t, 1, res.Created)
	assert.Zero(t, s.count(t, "matches"), "records before the failure are discarded too")

	_, err = s.sqlDB.Exec(`DROP TRIGGER abort_batch`)
	require.NoError(t, err)

	res, err = s.matches.UpsertSummaries(ctx, batch, region.Inferrer{})
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Seen: 3, Created: 3}, res)
	assert.Equal(t, 3, s.count(t, "matches"))
}

func TestIngestDetailRollsBackOnFatalError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.abortWhen(t, "player_match_stats", "(SELECT name FROM players WHERE id = NEW.player_id) = 'ZmjjKK'")

	_, err := s.matches.IngestDetail(ctx, detailFixture(), "https://www.vlr.gg/378829/th-vs-edg", region.Inferrer{})
	require.Error(t, err)

	assert.Zero(t, s.count(t, "matches"))
	assert.Zero(t, s.count(t, "players"))
	assert.Zero(t, s.count(t, "player_match_stats"))
}

func detailFixture() *domain.MatchDetail {
	return &domain.MatchDetail{
		SourceID: "378829",
		Header: domain.MatchHeader{
			Team1Name:  str("Team Heretics"),
			Team2Name:  str("EDward Gaming"),
			Team1Score: num(2),
			Team2Score: num(3),
			EventName:  str("Champions Tour 2024: Champions Seoul"),
			Status:     domain.StatusCompleted,
		},
		Stats: []domain.PlayerStat{
			{PlayerName: "Boo", PlayerSourceID: str("11"), TeamName: str("TH"), Kills: num(20), Deaths: num(15)},
			{PlayerName: "ZmjjKK", PlayerSourceID: str("21"), TeamName: str("EDG"), Kills: num(30), Deaths: num(12)},
		},
	}
}

func TestIngestDetailIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	detail := detailFixture()

	first, err := s.matches.IngestDetail(ctx, detail, "https://www.vlr.gg/378829/th-vs-edg", region.Inferrer{})
	require.NoError(t, err)
	assert.True(t, first.MatchCreated)
	assert.Equal(t, 2, first.PlayersCreated)
	assert.Equal(t, 2, first.StatsInserted)

	second, err := s.matches.IngestDetail(ctx, detail, "https://www.vlr.gg/378829/th-vs-edg", region.Inferrer{})
	require.NoError(t, err)
	assert.False(t, second.MatchCreated)
	assert.Zero(t, second.PlayersCreated)
	assert.Zero(t, second.StatsInserted)
	assert.Equal(t, 2, second.StatsSkipped)

	assert.Equal(t, 2, s.count(t, "players"))
	assert.Equal(t, 2, s.count(t, "player_match_stats"))

	n, err := s.matches.CountStats(ctx, first.MatchID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines, err := s.stats.ListForMatch(ctx, first.MatchID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "ZmjjKK", lines[0].PlayerName, "EDG sorts before TH")
	assert.Equal(t, 30, *lines[0].Stats.Kills)
}

func TestIngestDetailUpdatesExistingMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.matches.UpsertSummaries(ctx, []domain.MatchSummary{
		{SourceID: "378829", URL: "https://www.vlr.gg/378829/th-vs-edg", Status: domain.StatusLive},
	}, region.Inferrer{})
	require.NoError(t, err)

	res, err := s.matches.IngestDetail(ctx, detailFixture(), "https://www.vlr.gg/378829/th-vs-edg", region.Inferrer{})
	require.NoError(t, err)
	assert.False(t, res.MatchCreated)

	m, err := s.matches.GetBySourceID(ctx, "378829")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, m.Status)
	assert.Equal(t, "Team Heretics", *m.Team1Name)
	assert.Equal(t, 3, *m.Team2Score)
}

func TestResolvePlayerBackfillsSourceID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	anonymous := detailFixture()
	anonymous.Stats = []domain.PlayerStat{{PlayerName: "Boo"}}
	_, err := s.matches.IngestDetail(ctx, anonymous, "", region.Inferrer{})
	require.NoError(t, err)

	other := detailFixture()
	other.SourceID = "400000"
	other.Stats = []domain.PlayerStat{{PlayerName: "Boo", PlayerSourceID: str("11")}}
	res, err := s.matches.IngestDetail(ctx, other, "", region.Inferrer{})
	require.NoError(t, err)
	assert.Zero(t, res.PlayersCreated)
	assert.Equal(t, 1, res.StatsInserted)

	p, err := s.queries.GetPlayerBySourceID(ctx, "11")
	require.NoError(t, err)
	assert.Equal(t, "Boo", p.Name)
	assert.Equal(t, 1, s.count(t, "players"))

	namesake := detailFixture()
	namesake.SourceID = "400001"
	namesake.Stats = []domain.PlayerStat{{PlayerName: "Boo", PlayerSourceID: str("99")}}
	res, err = s.matches.IngestDetail(ctx, namesake, "", region.Inferrer{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PlayersCreated, "a different source id is a different player")
	assert.Equal(t, 2, s.count(t, "players"))
}

func TestRunJournal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.runs.Start(ctx, domain.RunKindList, "/matches")
	require.NoError(t, err)
	assert.Len(t, run.ID, 21)

	run.Status = domain.RunStatusPartial
	run.PagesFetched = 1
	run.PagesFailed = 1
	run.RecordsSeen = 40
	run.RecordsWritten = 12
	run.Error = str("GET /matches/results: status 503")
	require.NoError(t, s.runs.Finish(ctx, run))

	got, err := s.runs.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusPartial, got.Status)
	assert.Equal(t, 40, got.RecordsSeen)
	assert.NotNil(t, got.FinishedAt)
	assert.Equal(t, "GET /matches/results: status 503", *got.Error)

	none, err := s.runs.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, none)
}
