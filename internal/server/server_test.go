package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"vct-status/internal/constants"
	"vct-status/internal/database"
	"vct-status/internal/db"
	"vct-status/internal/domain"
	"vct-status/internal/repository"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(v string) *string { return &v }
func num(v int) *int       { return &v }

// newTestServer stores one completed match with two players. Not parallel: goose keeps global
// state.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "vct.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	queries := db.New(sqlDB)
	refs := repository.NewReferenceRepository(sqlDB, queries, logger)
	_, err = refs.Seed(ctx)
	require.NoError(t, err)
	inferrer, err := refs.Inferrer(ctx)
	require.NoError(t, err)

	matches := repository.NewMatchRepository(sqlDB, queries, logger)
	_, err = matches.UpsertSummaries(ctx, []domain.MatchSummary{
		{SourceID: "500001", URL: "https://www.vlr.gg/500001/prx-vs-drx", Status: domain.StatusUpcoming, EventName: str("VCT 2025: Pacific Stage 2")},
	}, inferrer)
	require.NoError(t, err)
	_, err = matches.IngestDetail(ctx, &domain.MatchDetail{
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
			{PlayerName: "Boo", PlayerSourceID: str("11"), TeamName: str("TH"), Kills: num(20), Deaths: num(15), ACS: num(210)},
			{PlayerName: "ZmjjKK", PlayerSourceID: str("21"), TeamName: str("EDG"), Kills: num(30), Deaths: num(12), KillDeathDiff: num(18), ACS: num(290)},
		},
	}, "https://www.vlr.gg/378829/th-vs-edg", inferrer)
	require.NoError(t, err)

	srv := New(repository.NewReadRepository(database.NewSQLX(sqlDB), logger), sqlDB, logger)
	return srv.Routes()
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t)

	rec, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["schema_version"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListMatches(t *testing.T) {
	h := newTestServer(t)

	rec, body := get(t, h, "/api/matches")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["count"])

	rec, body = get(t, h, "/api/matches?status=completed")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, body["count"])
	m := body["matches"].([]any)[0].(map[string]any)
	assert.Equal(t, "378829", m["source_id"])
	assert.Equal(t, "completed", m["status"])
	assert.Equal(t, "champions", m["competition_type"])

	rec, body = get(t, h, "/api/matches?status=upcoming&limit=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	m = body["matches"].([]any)[0].(map[string]any)
	assert.Equal(t, "PAC", m["region"])

	_, body = get(t, h, "/api/matches?limit=1")
	assert.EqualValues(t, 1, body["count"])
}

func TestListMatchesRejectsBadQuery(t *testing.T) {
	h := newTestServer(t)

	for _, target := range []string{
		"/api/matches?status=finished",
		"/api/matches?status=LIVE",
		"/api/matches?limit=abc",
		"/api/matches?limit=0",
		"/api/matches?limit=-5",
	} {
		rec, body := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "invalid_input", body["error"], target)
		assert.Equal(t, rec.Header().Get("X-Request-ID"), body["request_id"], target)
	}
}

func TestGetMatch(t *testing.T) {
	h := newTestServer(t)

	rec, body := get(t, h, "/api/matches/378829")
	require.Equal(t, http.StatusOK, rec.Code)
	match := body["match"].(map[string]any)
	assert.Equal(t, "Team Heretics", match["team1_name"])
	assert.EqualValues(t, 3, match["team2_score"])

	players := body["players"].([]any)
	require.Len(t, players, 2)
	first := players[0].(map[string]any)
	assert.Equal(t, "ZmjjKK", first["player"])
	assert.EqualValues(t, 18, first["kd_diff"])

	rec, body = get(t, h, "/api/matches/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])

	rec, _ = get(t, h, "/api/matches/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlayerMatches(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/players/11/matches", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))

	var body struct {
		Player  repository.PlayerView        `json:"player"`
		Matches []repository.PlayerMatchView `json:"matches"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Boo", body.Player.Name)
	require.Len(t, body.Matches, 1)
	assert.Equal(t, "378829", body.Matches[0].SourceID)
	assert.Equal(t, int64(20), *body.Matches[0].Kills)

	rec2, body2 := get(t, h, "/api/players/55/matches")
	assert.Equal(t, http.StatusNotFound, rec2.Code)
	assert.Equal(t, "not_found", body2["error"])

	rec2, _ = get(t, h, "/api/players/boo/matches")
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t)

	rec, body := get(t, h, "/api/teams")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}

func TestParseLimit(t *testing.T) {
	t.Parallel()

	limit, err := parseLimit("")
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultListLimit, limit)

	limit, err = parseLimit("5000")
	require.NoError(t, err)
	assert.Equal(t, constants.MaxListLimit, limit)

	_, err = parseLimit("1.5")
	assert.Error(t, err)
}
