package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"vct-status/internal/report"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/image/draw"
)

const (
	ReportCardWidth  = 450
	ReportCardHeight = 220

	reportGap     = 40
	reportHeaderH = 100
	avatarSize    = 60
	flagSize      = 20
	teamIconSize  = 40
	reportStatW   = 60
)

var (
	reportBackground = color.RGBA{240, 240, 240, 255}
	reportText       = color.RGBA{50, 50, 50, 255}
	reportNameBG     = color.RGBA{88, 31, 31, 255}
	reportTitleText  = color.RGBA{250, 250, 250, 255}
)

// ErrIncompleteMap is returned when one side of a map has no players.
var ErrIncompleteMap = crerr.New("map roster is incomplete")

// circle is an alpha mask of a disc with radius r.
type circle struct {
	r int
}

func (c circle) ColorModel() color.Model { return color.AlphaModel }

func (c circle) Bounds() image.Rectangle { return image.Rect(0, 0, 2*c.r, 2*c.r) }

func (c circle) At(x, y int) color.Color {
	dx := float64(x-c.r) + 0.5
	dy := float64(y-c.r) + 0.5
	if math.Hypot(dx, dy) <= float64(c.r) {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

func fmtNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	if *v == math.Trunc(*v) {
		return fmt.Sprintf("%.0f", *v)
	}
	return fmt.Sprintf("%.2f", *v)
}

// ReportPlayer draws a ReportCardWidth x ReportCardHeight card for one report roster entry.
// Avatar and flag are fetched through the cache and left out when unavailable.
func (r *Renderer) ReportPlayer(ctx context.Context, p report.Player) (image.Image, error) {
	f, err := r.faces()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img := newCanvas(ReportCardWidth, ReportCardHeight, reportBackground)

	if avatar := r.cache.Get(ctx, p.PlayerInfo.Icon); avatar != nil {
		scaled := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
		paste(scaled, scaled.Bounds(), avatar)
		dst := image.Rect(10, 10, 10+avatarSize, 10+avatarSize)
		draw.DrawMask(img, dst, scaled, image.Point{}, circle{r: avatarSize / 2}, image.Point{}, draw.Over)
	}
	if flag := r.cache.Get(ctx, p.PlayerInfo.NationalityIcon); flag != nil {
		paste(img, image.Rect(50, 50, 50+flagSize, 50+flagSize), flag)
	}

	x, y := 80, 10
	fillRect(img, image.Rect(x, y+3, x+100, y+reportTitleSize+3), reportNameBG)
	drawText(img, f.reportTitle, reportTitleText, x, y, p.Name())
	y += reportTitleSize + 5
	drawText(img, f.reportTitle, reportText, x, y, p.PlayerInfo.RealName)
	y += reportTitleSize + 5
	if p.CareerInfo.Position != "" {
		drawText(img, f.reportBody, reportText, x, y, "Position: "+p.CareerInfo.Position)
	}
	y += reportBodySize + 10 + 40

	fields := []stat{
		{"ACS", fmtNumber(p.ACS())},
		{"Rating", fmtNumber(p.Rating())},
		{"ADR", fmtNumber(p.ADR())},
		{"K /", fmtInt(p.Kills())},
		{"D /", fmtInt(p.Deaths())},
		{"A", fmtInt(p.Assists())},
		{"KAST", fmtNumber(p.KAST())},
	}
	for i, st := range fields {
		sx := 10 + i*reportStatW
		h := drawText(img, f.reportBody, reportText, sx, y, st.label)
		drawText(img, f.reportBody, reportText, sx, y+h, st.value)
	}
	return img, nil
}

// ReportMap draws one map of a report: the guest roster on the left, the main roster on the
// right, with the map name, team labels, scores and team icons on top.
func (r *Renderer) ReportMap(ctx context.Context, m report.Map) (image.Image, error) {
	guest, main := m.Sides()
	if len(guest) == 0 || len(main) == 0 {
		return nil, crerr.Wrapf(ErrIncompleteMap, "map %q has %d guest and %d main players", m.Name(), len(guest), len(main))
	}

	f, err := r.faces()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	width := ReportCardWidth*2 + reportGap
	height := max(len(guest), len(main))*ReportCardHeight + reportHeaderH
	img := newCanvas(width, height, color.White)

	title := "Map: " + m.Name()
	drawText(img, f.reportTitle, color.Black, (width-textWidth(f.reportTitle, title))/2, 10, title)

	if icon := r.cache.Get(ctx, m.GuestTeam.TeamIcon); icon != nil {
		paste(img, fitted(image.Rect(10, 50, 10+teamIconSize, 50+teamIconSize), icon), icon)
	}
	if icon := r.cache.Get(ctx, m.MainTeam.TeamIcon); icon != nil {
		paste(img, fitted(image.Rect(width-10-teamIconSize, 50, width-10, 50+teamIconSize), icon), icon)
	}

	left := fmt.Sprintf("%s: %s", m.GuestTeam.Label(), fmtInt(m.GuestScore.Value()))
	right := fmt.Sprintf("%s: %s", m.MainTeam.Label(), fmtInt(m.MainScore.Value()))
	drawText(img, f.reportTitle, color.Black, 20+teamIconSize, 55, left)
	drawText(img, f.reportTitle, color.Black, width-20-teamIconSize-textWidth(f.reportTitle, right), 55, right)

	for col, side := range [][]report.Player{guest, main} {
		x := 10
		if col == 1 {
			x = width - ReportCardWidth - 10
		}
		for i, p := range side {
			card, err := r.ReportPlayer(ctx, p)
			if err != nil {
				return nil, err
			}
			y := reportHeaderH + i*ReportCardHeight
			draw.Draw(img, image.Rect(x, y, x+ReportCardWidth, y+ReportCardHeight), card, image.Point{}, draw.Src)
		}
	}
	return img, nil
}
