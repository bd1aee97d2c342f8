package render

import (
	"fmt"
	"image"
	"strings"
	"vct-status/internal/domain"

	"golang.org/x/image/draw"
)

const (
	CardWidth  = 600
	CardHeight = 500

	logoSize     = 100
	rectPadX     = 20
	rectPadY     = 8
	textSpacing  = 12
	statColumnW  = 190
	summaryWidth = 1000
	summaryRowH  = 40
)

// Line is one player's stored stats line.
type Line struct {
	Player string
	Stats  domain.PlayerMatchStats
}

// PlayerCard draws a CardWidth x CardHeight card for one player's line in a match.
func (r *Renderer) PlayerCard(line Line) (image.Image, error) {
	f, err := r.faces()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img := newCanvas(CardWidth, CardHeight, background)
	s := line.Stats

	team := ""
	if s.TeamName != nil {
		team = *s.TeamName
	}
	if logo := r.teamLogo(team); logo != nil {
		paste(img, fitted(image.Rect(padding, padding, padding+logoSize, padding+logoSize), logo), logo)
	}

	nameX := padding + logoSize + padding
	nameY := padding + logoSize/2 - largeSize/2 - 5
	nameH := f.large.Metrics().Height.Ceil()
	rect := image.Rect(nameX-rectPadX, nameY-rectPadY, nameX+textWidth(f.large, line.Player)+rectPadX, nameY+nameH+rectPadY)
	if rect.Max.X > CardWidth-padding/2 {
		rect.Max.X = CardWidth - padding/2
	}
	fillRect(img, rect, accent)
	drawText(img, f.large, image.White, nameX, nameY, line.Player)

	bottom := max(padding+logoSize, rect.Max.Y)
	if team != "" {
		bottom = rect.Max.Y + rectPadY + drawText(img, f.small, labelColor, nameX, rect.Max.Y+rectPadY, team)
	}

	y := bottom + padding
	for _, row := range [][]stat{
		{
			{"K / D / A", fmt.Sprintf("%s / %s / %s", fmtInt(s.Kills), fmtInt(s.Deaths), fmtInt(s.Assists))},
			{"ACS", fmtInt(s.ACS)},
			{"Rating", fmtFloat(s.Rating, 2)},
		},
		{
			{"ADR", fmtInt(s.ADR)},
			{"KAST", fmtPercent(s.KASTPercentage)},
			{"HS%", fmtPercent(s.HeadshotPercentage)},
		},
	} {
		h := 0
		for i, st := range row {
			h = max(h, r.drawStat(img, f, padding+i*statColumnW, y, st))
		}
		y += h + padding
	}

	if s.Agent != nil {
		drawText(img, f.small, labelColor, padding, y, "Agent: "+*s.Agent)
	}
	return img, nil
}

type stat struct {
	label string
	value string
}

// drawStat draws a label with its value underneath and returns the block height.
func (r *Renderer) drawStat(dst draw.Image, f faces, x, y int, st stat) int {
	h := drawText(dst, f.label, labelColor, x, y, st.label)
	h += textSpacing / 2
	h += drawText(dst, f.regular, textColor, x, y+h, st.value)
	return h
}

// Summary is a match with its stored stats lines in display order.
type Summary struct {
	Match domain.Match
	Lines []Line
}

type teamGroup struct {
	name  string
	lines []Line
}

// groupByTeam keeps first-seen team order.
func groupByTeam(lines []Line) []teamGroup {
	var groups []teamGroup
	index := make(map[string]int)
	for _, l := range lines {
		team := "Unknown"
		if l.Stats.TeamName != nil && *l.Stats.TeamName != "" {
			team = *l.Stats.TeamName
		}
		i, ok := index[team]
		if !ok {
			i = len(groups)
			index[team] = i
			groups = append(groups, teamGroup{name: team})
		}
		groups[i].lines = append(groups[i].lines, l)
	}
	return groups
}

func orDash(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "-"
	}
	return *s
}

// MatchSummary draws the event, the score line and one row per player grouped by team. The
// height grows with the number of players.
func (r *Renderer) MatchSummary(sum Summary) (image.Image, error) {
	f, err := r.faces()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	groups := groupByTeam(sum.Lines)
	headerH := 190
	groupHeaderH := 60
	height := padding + headerH + padding
	for _, g := range groups {
		height += groupHeaderH + len(g.lines)*summaryRowH + padding
	}

	img := newCanvas(summaryWidth, height, background)
	m := sum.Match

	y := padding
	y += drawText(img, f.small, labelColor, padding, y, orDash(m.EventName))
	y += textSpacing

	score := fmt.Sprintf("%s  %s : %s  %s", orDash(m.Team1Name), fmtInt(m.Team1Score), fmtInt(m.Team2Score), orDash(m.Team2Name))
	w := textWidth(f.large, score)
	fillRect(img, image.Rect(padding-rectPadX/2, y-rectPadY, padding+w+rectPadX/2, y+f.large.Metrics().Height.Ceil()+rectPadY), accent)
	y += drawText(img, f.large, image.White, padding, y, score)
	y += 2 * textSpacing
	drawText(img, f.label, labelColor, padding, y, fmt.Sprintf("%s  ·  vlr.gg/%s", strings.ToUpper(string(m.Status)), m.SourceID))
	y = padding + headerH + padding

	columns := []int{padding, 330, 520, 720, 840}
	for _, g := range groups {
		fillRect(img, image.Rect(0, y, summaryWidth, y+groupHeaderH-12), panel)
		drawText(img, f.regular, accent, padding, y+4, g.name)
		y += groupHeaderH

		for _, l := range g.lines {
			s := l.Stats
			cells := []string{
				l.Player,
				orDash(s.Agent),
				fmt.Sprintf("%s/%s/%s", fmtInt(s.Kills), fmtInt(s.Deaths), fmtInt(s.Assists)),
				fmtInt(s.ACS),
				fmtFloat(s.Rating, 2),
			}
			for i, cell := range cells {
				drawText(img, f.small, textColor, columns[i], y, cell)
			}
			y += summaryRowH
		}
		y += padding
	}
	return img, nil
}
