package vlr

import (
	"strings"
	"vct-status/internal/domain"
	"vct-status/internal/normalize"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
)

// ParseMatchList reads the match cards of a /matches or /matches/results page. sourceURL is
// used to resolve relative links and for log context. Cards without a numeric match path are
// skipped and repeated ids keep their first occurrence.
func (p *Parser) ParseMatchList(html, sourceURL string) ([]domain.MatchSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to parse list page %s", sourceURL)
	}

	items := doc.Find("a.match-item")
	if items.Length() == 0 {
		p.logger.Warn().Str("url", sourceURL).Msg("no a.match-item elements, falling back to match links")
		items = doc.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			_, ok := MatchIDFromPath(href)
			return ok
		})
	}

	seen := make(map[string]struct{}, items.Length())
	summaries := make([]domain.MatchSummary, 0, items.Length())

	items.Each(func(i int, item *goquery.Selection) {
		href, _ := item.Attr("href")
		id, ok := MatchIDFromPath(href)
		if !ok {
			p.logger.Debug().Str("href", href).Msg("skipping link without match id")
			return
		}
		if _, dup := seen[id]; dup {
			return
		}

		summary, err := p.parseMatchItem(item, id, absoluteURL(sourceURL, href))
		if err != nil {
			p.logger.Warn().Err(err).Int("index", i).Str("match_source_id", id).Str("url", sourceURL).Msg("skipping match card")
			return
		}

		seen[id] = struct{}{}
		summaries = append(summaries, summary)
	})

	p.logger.Info().Str("url", sourceURL).Int("matches", len(summaries)).Msg("parsed match list")
	return summaries, nil
}

func (p *Parser) parseMatchItem(item *goquery.Selection, id, link string) (summary domain.MatchSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = crerr.Newf("panic reading match card: %v", r)
		}
	}()

	summary = domain.MatchSummary{
		SourceID: id,
		URL:      link,
		Status:   domain.ParseMatchStatus(text(item.Find(".ml-status").First())),
	}

	teams := item.Find(".match-item-vs-team-name")
	for i := 0; i < teams.Length() && i < 2; i++ {
		team := teams.Eq(i)
		name := text(team.Find(".text-of").First())
		if name == "" {
			name = text(team)
		}
		if i == 0 {
			summary.Team1Name = optional(name)
		} else {
			summary.Team2Name = optional(name)
		}
	}

	scores := item.Find(".match-item-vs-team-score")
	if scores.Length() >= 1 {
		summary.Team1Score = normalize.Int(text(scores.Eq(0)), nil)
	}
	if scores.Length() >= 2 {
		summary.Team2Score = normalize.Int(text(scores.Eq(1)), nil)
	}

	event := item.Find(".match-item-event").First()
	series := text(event.Find(".match-item-event-series").First())
	summary.EventName = composeEvent(ownText(event, ".match-item-event-series"), series)

	return summary, nil
}
