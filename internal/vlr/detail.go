package vlr

import (
	"strings"
	"vct-status/internal/constants"
	"vct-status/internal/domain"
	"vct-status/internal/normalize"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
)

// stat columns of the overview table, after the player and agent cells
const (
	colPlayer = iota
	colAgent
	colRating
	colACS
	colKills
	colDeaths
	colAssists
	colKillDeathDiff
	colKAST
	colADR
	colHeadshot
	colFirstKills
	colFirstDeaths
	colFirstKillDeathDiff
)

// ParseMatchDetail reads the header and the aggregated player stats of one match page.
func (p *Parser) ParseMatchDetail(html, sourceID string) (*domain.MatchDetail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to parse detail page for match %s", sourceID)
	}

	detail := &domain.MatchDetail{
		SourceID: sourceID,
		Header:   p.parseHeader(doc),
	}

	section := doc.Find(`div.vm-stats-game[data-game-id="all"]`).First()
	if section.Length() == 0 {
		section = doc.Find("div.vm-stats-game").First()
		if section.Length() == 0 {
			p.logger.Warn().Str("match_source_id", sourceID).Msg("no stats section on detail page")
			return detail, nil
		}
		gameID, _ := section.Attr("data-game-id")
		p.logger.Warn().Str("match_source_id", sourceID).Str("game_id", gameID).Msg("aggregate stats section missing, using first map")
		detail.Degraded = true
	}

	teamNames := []*string{detail.Header.Team1Name, detail.Header.Team2Name}

	section.Find("table.wf-table-inset.mod-overview").Each(func(ti int, table *goquery.Selection) {
		var fallbackTeam *string
		if ti < len(teamNames) {
			fallbackTeam = teamNames[ti]
		}

		table.Find("tbody tr").Each(func(ri int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < constants.MinStatColumns {
				p.logger.Warn().
					Str("match_source_id", sourceID).
					Int("table", ti).
					Int("row", ri).
					Int("cells", cells.Length()).
					Msg("skipping short stats row")
				return
			}

			stat, err := parseStatRow(cells, fallbackTeam)
			if err != nil {
				p.logger.Error().
					Err(err).
					Str("match_source_id", sourceID).
					Int("table", ti).
					Int("row", ri).
					Msg("failed to parse stats row")
				return
			}
			detail.Stats = append(detail.Stats, stat)
		})
	})

	p.logger.Info().
		Str("match_source_id", sourceID).
		Int("players", len(detail.Stats)).
		Bool("degraded", detail.Degraded).
		Msg("parsed match detail")
	return detail, nil
}

func (p *Parser) parseHeader(doc *goquery.Document) domain.MatchHeader {
	var h domain.MatchHeader

	names := doc.Find(".match-header-link-name .wf-title-med")
	if names.Length() >= 1 {
		h.Team1Name = optional(text(names.Eq(0)))
	}
	if names.Length() >= 2 {
		h.Team2Name = optional(text(names.Eq(1)))
	}

	scores := doc.Find(".match-header-vs-score .js-spoiler span").Not(".match-header-vs-score-colon")
	if scores.Length() >= 2 {
		h.Team1Score = normalize.Int(text(scores.Eq(0)), nil)
		h.Team2Score = normalize.Int(text(scores.Eq(1)), nil)
	}

	h.Status = domain.ParseMatchStatus(text(doc.Find(".match-header-vs-note").First()))

	event := doc.Find(".match-header-event").First()
	series := text(event.Find(".match-header-event-series").First())
	h.EventName = composeEvent(ownText(event, ".match-header-event-series"), series)

	return h
}

func parseStatRow(cells *goquery.Selection, fallbackTeam *string) (stat domain.PlayerStat, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = crerr.Newf("panic reading stats row: %v", r)
		}
	}()

	playerCell := cells.Eq(colPlayer)
	link := playerCell.Find(`a[href^="/player/"]`).First()
	if link.Length() == 0 {
		link = playerCell.Find("a").First()
	}

	name := text(link.Find(".text-of").First())
	if name == "" {
		name = text(playerCell.Find(".text-of").First())
	}
	if name == "" {
		name = text(link)
	}
	if name == "" {
		return stat, crerr.New("player name missing")
	}
	stat.PlayerName = name

	if href, ok := link.Attr("href"); ok {
		if id, ok := playerIDFromPath(href); ok {
			stat.PlayerSourceID = &id
		}
	}

	stat.TeamName = optional(text(playerCell.Find(".ge-text-light").First()))
	if stat.TeamName == nil {
		stat.TeamName = fallbackTeam
	}

	stat.Agent = agents(cells.Eq(colAgent))

	stat.Rating = normalize.Float(statText(cells.Eq(colRating)), nil)
	stat.ACS = normalize.Int(statText(cells.Eq(colACS)), nil)
	stat.Kills = normalize.Int(statText(cells.Eq(colKills)), nil)
	stat.Deaths = normalize.Int(statText(cells.Eq(colDeaths)), nil)
	stat.Assists = normalize.Int(statText(cells.Eq(colAssists)), nil)
	stat.KillDeathDiff = normalize.Int(statText(cells.Eq(colKillDeathDiff)), nil)
	stat.KASTPercentage = normalize.Float(statText(cells.Eq(colKAST)), nil)
	stat.ADR = normalize.Int(statText(cells.Eq(colADR)), nil)
	stat.HeadshotPercentage = normalize.Float(statText(cells.Eq(colHeadshot)), nil)
	stat.FirstKills = normalize.Int(statText(cells.Eq(colFirstKills)), nil)
	stat.FirstDeaths = normalize.Int(statText(cells.Eq(colFirstDeaths)), nil)
	stat.FirstKillDeathDiff = normalize.Int(statText(cells.Eq(colFirstKillDeathDiff)), nil)

	FillDifferentials(&stat)
	return stat, nil
}

// FillDifferentials derives K-D and FK-FD from their components when the page left them out.
// Values read from the page are kept as they are.
func FillDifferentials(stat *domain.PlayerStat) {
	if stat.KillDeathDiff == nil && stat.Kills != nil && stat.Deaths != nil {
		d := *stat.Kills - *stat.Deaths
		stat.KillDeathDiff = &d
	}
	if stat.FirstKillDeathDiff == nil && stat.FirstKills != nil && stat.FirstDeaths != nil {
		d := *stat.FirstKills - *stat.FirstDeaths
		stat.FirstKillDeathDiff = &d
	}
}

// statText prefers the both-sides figure, then the cell's own text when it is numeric.
func statText(cell *goquery.Selection) string {
	if both := cell.Find(".mod-both").First(); both.Length() > 0 {
		return text(both)
	}
	raw := text(cell)
	if normalize.Float(raw, nil) == nil {
		return ""
	}
	return raw
}

func agents(cell *goquery.Selection) *string {
	var names []string
	cell.Find("img").Each(func(_ int, img *goquery.Selection) {
		name, ok := img.Attr("title")
		if !ok || strings.TrimSpace(name) == "" {
			name, _ = img.Attr("alt")
		}
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	})
	if len(names) == 0 {
		return optional(text(cell))
	}
	joined := strings.Join(names, "/")
	return &joined
}
