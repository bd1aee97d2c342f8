package vlr

import (
	"net/url"
	"regexp"
	"strings"
	"vct-status/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

var (
	matchPath  = regexp.MustCompile(`^/(\d+)/.+`)
	playerPath = regexp.MustCompile(`^/player/(\d+)(?:/|$)`)
	spaces     = regexp.MustCompile(`\s+`)
)

// Parser turns vlr.gg markup into records. It keeps no state between pages.
type Parser struct {
	logger zerolog.Logger
}

func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger}
}

// MatchIDFromPath extracts the numeric match id from a detail link such as
// "/450053/team-a-vs-team-b" or its absolute form.
func MatchIDFromPath(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	m := matchPath.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func playerIDFromPath(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	m := playerPath.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func absoluteURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	r, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return b.ResolveReference(r).String()
}

// text returns the collapsed text of sel, or "" for an empty selection.
func text(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(spaces.ReplaceAllString(sel.Text(), " "))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ownText is the text of sel without the text of its children matching exclude.
func ownText(sel *goquery.Selection, exclude string) string {
	if sel.Length() == 0 {
		return ""
	}
	clone := sel.First().Clone()
	clone.Find(exclude).Remove()
	return text(clone)
}

// composeEvent joins an event label with its series label unless the series is already part
// of it.
func composeEvent(primary, series string) *string {
	switch {
	case primary == "" && series == "":
		return nil
	case series == "":
		return &primary
	case primary == "":
		return &series
	case strings.Contains(primary, series):
		return &primary
	}
	joined := primary + domain.EventSeriesSeparator + series
	return &joined
}
