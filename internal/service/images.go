package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"vct-status/internal/config"
	"vct-status/internal/constants"
	"vct-status/internal/render"
	"vct-status/internal/report"
	"vct-status/internal/repository"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ImageService struct {
	matches  *repository.MatchRepository
	stats    *repository.StatsRepository
	pipeline *PipelineService
	cfg      *config.Config
	logger   zerolog.Logger
}

func NewImageService(matches *repository.MatchRepository, stats *repository.StatsRepository, pipeline *PipelineService, cfg *config.Config, logger zerolog.Logger) *ImageService {
	return &ImageService{matches: matches, stats: stats, pipeline: pipeline, cfg: cfg, logger: logger}
}

type ImageOptions struct {
	OutputDir       string
	ExpectedPlayers int
	SkipSummary     bool
	SkipPlayer      bool
}

type ImageReport struct {
	Scraped bool
	Summary string
	Cards   []string
	Failed  int
}

// newRenderer builds a renderer with its own image cache, so nothing downloaded outlives the
// command that asked for it.
func (s *ImageService) newRenderer() (*render.Renderer, error) {
	cache := render.NewImageCache(s.cfg.ReportImageBaseURL, s.logger)
	return render.NewRenderer(s.cfg.FontPath, s.cfg.LogoDir, cache, s.logger)
}

func (s *ImageService) withDefaults(opts ImageOptions) ImageOptions {
	if opts.OutputDir == "" {
		opts.OutputDir = s.cfg.ImageOutputDir
	}
	if opts.ExpectedPlayers <= 0 {
		opts.ExpectedPlayers = s.cfg.ExpectedPlayers
	}
	return opts
}

// GenerateImages renders the summary image and one card per player for a stored match. When the
// match is missing, or has fewer player lines than opts.ExpectedPlayers, its detail page is
// scraped first. A card that fails is logged and skipped.
func (s *ImageService) GenerateImages(ctx context.Context, sourceID string, opts ImageOptions) (*ImageReport, error) {
	opts = s.withDefaults(opts)
	sourceID = strings.TrimSpace(sourceID)
	report := &ImageReport{}

	match, err := s.matches.GetBySourceID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	count := 0
	if match != nil {
		if count, err = s.matches.CountStats(ctx, match.ID); err != nil {
			return nil, err
		}
	}

	if match == nil || count < opts.ExpectedPlayers {
		s.logger.Info().
			Str("match_source_id", sourceID).
			Int("stored_players", count).
			Int("expected_players", opts.ExpectedPlayers).
			Msg("match data incomplete, scraping details")

		if _, err := s.pipeline.ScrapeMatchDetails(ctx, sourceID); err != nil {
			if match == nil {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("match_source_id", sourceID).Msg("scrape failed, rendering stored data")
		} else {
			report.Scraped = true
		}

		if match, err = s.matches.GetBySourceID(ctx, sourceID); err != nil {
			return nil, err
		}
	}
	if match == nil {
		return nil, crerr.Wrapf(ErrNotFound, "match %s", sourceID)
	}

	stored, err := s.stats.ListForMatch(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, crerr.Wrapf(ErrNotFound, "no player stats for match %s", sourceID)
	}

	lines := make([]render.Line, len(stored))
	for i, l := range stored {
		lines[i] = render.Line{Player: l.PlayerName, Stats: l.Stats}
	}

	renderer, err := s.newRenderer()
	if err != nil {
		return nil, err
	}

	if !opts.SkipSummary {
		img, err := renderer.MatchSummary(render.Summary{Match: *match, Lines: lines})
		if err != nil {
			return nil, crerr.Wrapf(err, "failed to render summary for match %s", sourceID)
		}
		path := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_summary.png", sourceID))
		if err := render.SavePNG(img, path); err != nil {
			return nil, err
		}
		report.Summary = path
		s.logger.Info().Str("path", path).Msg("summary image saved")
	}

	if !opts.SkipPlayer {
		cards, failed := s.renderCards(ctx, renderer, sourceID, opts.OutputDir, lines)
		report.Cards = cards
		report.Failed = failed
	}
	return report, nil
}

func (s *ImageService) renderCards(ctx context.Context, renderer *render.Renderer, sourceID, dir string, lines []render.Line) ([]string, int) {
	paths := make([]string, len(lines))
	var (
		mu     sync.Mutex
		failed int
	)

	players := make([]string, len(lines))
	for i, line := range lines {
		players[i] = line.Player
	}
	names := render.UniqueNames(players)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.CardRenderWorkers)
	for i, line := range lines {
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}
			path := filepath.Join(dir, fmt.Sprintf("%s_%s_card.png", sourceID, names[i]))
			img, err := renderer.PlayerCard(line)
			if err == nil {
				err = render.SavePNG(img, path)
			}
			if err != nil {
				s.logger.Error().Err(err).Str("player", line.Player).Str("match_source_id", sourceID).Msg("failed to render player card, skipping")
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			paths[i] = path
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	s.logger.Info().Str("match_source_id", sourceID).Int("cards", len(out)).Int("failed", failed).Msg("player cards rendered")
	return out, failed
}

type ReportMode string

const (
	ReportModeCombined   ReportMode = "combined"
	ReportModeIndividual ReportMode = "individual"
	ReportModeBoth       ReportMode = "both"
)

type ReportOptions struct {
	// MapIndex selects one map (zero based); nil renders every map that was played
	MapIndex  *int
	Mode      ReportMode
	OutputDir string
}

type ReportImages struct {
	Maps    []string
	Players []string
	Failed  int
}

// RenderReport renders map images and/or per-player cards from a match report document.
func (s *ImageService) RenderReport(ctx context.Context, path string, opts ReportOptions) (*ReportImages, error) {
	if opts.Mode == "" {
		opts.Mode = ReportModeBoth
	}
	switch opts.Mode {
	case ReportModeCombined, ReportModeIndividual, ReportModeBoth:
	default:
		return nil, crerr.Wrapf(ErrInvalidInput, "unknown mode %q", opts.Mode)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = s.cfg.ImageOutputDir
	}

	data, err := report.Load(path)
	if err != nil {
		return nil, err
	}

	indexes := data.Played()
	if opts.MapIndex != nil {
		i := *opts.MapIndex
		if i < 0 || i >= len(data.List) {
			return nil, crerr.Wrapf(ErrInvalidInput, "map index %d out of range (report has %d maps)", i, len(data.List))
		}
		indexes = []int{i}
	}

	renderer, err := s.newRenderer()
	if err != nil {
		return nil, err
	}
	out := &ReportImages{}

	if opts.Mode != ReportModeIndividual {
		for _, i := range indexes {
			img, err := renderer.ReportMap(ctx, data.List[i])
			if err == nil {
				file := filepath.Join(opts.OutputDir, fmt.Sprintf("combined_map_%d.png", i+1))
				if err = render.SavePNG(img, file); err == nil {
					out.Maps = append(out.Maps, file)
					continue
				}
			}
			out.Failed++
			s.logger.Error().Err(err).Int("map_index", i).Str("map", data.List[i].Name()).Msg("failed to render map image, skipping")
		}
	}

	if opts.Mode != ReportModeCombined {
		dir := filepath.Join(opts.OutputDir, "player_images")
		players := make([]string, len(data.All))
		for i, p := range data.All {
			players[i] = p.Name()
		}
		names := render.UniqueNames(players)

		for i, p := range data.All {
			img, err := renderer.ReportPlayer(ctx, p)
			if err == nil {
				file := filepath.Join(dir, names[i]+".png")
				if err = render.SavePNG(img, file); err == nil {
					out.Players = append(out.Players, file)
					continue
				}
			}
			out.Failed++
			s.logger.Error().Err(err).Str("player", p.Name()).Msg("failed to render player image, skipping")
		}
	}
	return out, nil
}
