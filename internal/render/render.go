// Package render draws player cards and match images as PNG.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	background = color.RGBA{15, 25, 35, 255}
	textColor  = color.RGBA{230, 230, 230, 255}
	labelColor = color.RGBA{180, 180, 180, 255}
	accent     = color.RGBA{255, 70, 85, 255}
	panel      = color.RGBA{28, 40, 52, 255}
)

const (
	padding = 35

	largeSize   = 48
	defaultSize = 36
	smallSize   = 28
	labelSize   = 24

	reportTitleSize = 24
	reportBodySize  = 16
)

type faces struct {
	large       font.Face
	regular     font.Face
	small       font.Face
	label       font.Face
	reportTitle font.Face
	reportBody  font.Face
}

func (f faces) Close() {
	for _, face := range []font.Face{f.large, f.regular, f.small, f.label, f.reportTitle, f.reportBody} {
		if face != nil {
			_ = face.Close()
		}
	}
}

// Renderer is safe for concurrent use: parsed fonts are shared, faces are built per image.
type Renderer struct {
	bold    *opentype.Font
	regular *opentype.Font
	logoDir string
	cache   *ImageCache
	logger  zerolog.Logger
}

// NewRenderer loads fontPath (any OpenType/TrueType file) or falls back to the Go fonts when
// it is empty or unreadable. logoDir may hold <TEAM>.png logos; cache serves remote images.
func NewRenderer(fontPath, logoDir string, cache *ImageCache, logger zerolog.Logger) (*Renderer, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, crerr.Wrap(err, "failed to parse bundled bold font")
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, crerr.Wrap(err, "failed to parse bundled font")
	}

	if fontPath != "" {
		custom, err := loadFont(fontPath)
		if err != nil {
			logger.Warn().Err(err).Str("font_path", fontPath).Msg("falling back to bundled fonts")
		} else {
			bold, regular = custom, custom
		}
	}

	return &Renderer{bold: bold, regular: regular, logoDir: logoDir, cache: cache, logger: logger}, nil
}

func (r *Renderer) faces() (faces, error) {
	var f faces
	for _, spec := range []struct {
		dst  *font.Face
		font *opentype.Font
		size float64
	}{
		{&f.large, r.bold, largeSize},
		{&f.regular, r.bold, defaultSize},
		{&f.small, r.regular, smallSize},
		{&f.label, r.regular, labelSize},
		{&f.reportTitle, r.bold, reportTitleSize},
		{&f.reportBody, r.regular, reportBodySize},
	} {
		face, err := opentype.NewFace(spec.font, &opentype.FaceOptions{Size: spec.size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			f.Close()
			return faces{}, crerr.Wrap(err, "failed to create font face")
		}
		*spec.dst = face
	}
	return f, nil
}

func loadFont(path string) (*opentype.Font, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to read font %s", path)
	}
	f, err := opentype.Parse(raw)
	if err != nil {
		return nil, crerr.Wrapf(err, "failed to parse font %s", path)
	}
	return f, nil
}

func newCanvas(w, h int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// drawText draws s with its top-left corner at (x, y) and returns the line height.
func drawText(dst draw.Image, face font.Face, c color.Color, x, y int, s string) int {
	m := face.Metrics()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+m.Ascent.Ceil()),
	}
	d.DrawString(s)
	return m.Height.Ceil()
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// paste scales src into r.
func paste(dst draw.Image, r image.Rectangle, src image.Image) {
	draw.CatmullRom.Scale(dst, r, src, src.Bounds(), draw.Over, nil)
}

// fitted returns the largest rectangle with src's aspect ratio that fits in box, centred.
func fitted(box image.Rectangle, src image.Image) image.Rectangle {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return box
	}
	w, h := box.Dx(), box.Dy()
	if sb.Dx()*h > sb.Dy()*w {
		h = sb.Dy() * w / sb.Dx()
	} else {
		w = sb.Dx() * h / sb.Dy()
	}
	x := box.Min.X + (box.Dx()-w)/2
	y := box.Min.Y + (box.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// teamLogo loads <logoDir>/<TEAM>.png, nil when missing.
func (r *Renderer) teamLogo(team string) image.Image {
	if r.logoDir == "" || team == "" {
		return nil
	}
	path := filepath.Join(r.logoDir, strings.ToUpper(team)+".png")
	f, err := os.Open(path)
	if err != nil {
		r.logger.Debug().Str("path", path).Msg("team logo not found")
		return nil
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("failed to decode team logo")
		return nil
	}
	return img
}

func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return crerr.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return crerr.Wrapf(err, "failed to create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return crerr.Wrapf(err, "failed to encode %s", path)
	}
	return f.Close()
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// SafeName turns a player name into something usable in a file name. Letters and digits of any
// script are kept.
func SafeName(name string) string {
	s := unsafeChars.ReplaceAllString(strings.TrimSpace(name), "_")
	s = strings.Trim(s, "_.")
	if s == "" {
		return "player"
	}
	return s
}

// UniqueNames returns SafeName of every name, suffixing repeats with _2, _3, ... so that no two
// entries collide, even on a case-insensitive file system.
func UniqueNames(names []string) []string {
	out := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	for i, name := range names {
		base := SafeName(name)
		candidate := base
		for n := 2; taken[strings.ToLower(candidate)]; n++ {
			candidate = fmt.Sprintf("%s_%d", base, n)
		}
		taken[strings.ToLower(candidate)] = true
		out[i] = candidate
	}
	return out
}

func fmtInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func fmtFloat(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

func fmtPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", *v)
}
