package service

import (
	"context"
	"vct-status/internal/domain"
	"vct-status/internal/repository"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// IngestService validates parsed records and hands them to the repositories together with the
// current region and competition rules.
type IngestService struct {
	matches  *repository.MatchRepository
	refs     *repository.ReferenceRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewIngestService(matches *repository.MatchRepository, refs *repository.ReferenceRepository, logger zerolog.Logger) *IngestService {
	return &IngestService{
		matches:  matches,
		refs:     refs,
		validate: validator.New(),
		logger:   logger,
	}
}

// IngestSummaries writes one list page. Summaries failing validation never reach the database
// and are counted as failed.
func (s *IngestService) IngestSummaries(ctx context.Context, summaries []domain.MatchSummary) (repository.BatchResult, error) {
	valid := make([]domain.MatchSummary, 0, len(summaries))
	invalid := 0
	for _, summary := range summaries {
		if err := s.validate.Struct(summary); err != nil {
			invalid++
			s.logger.Warn().Err(err).Str("match_source_id", summary.SourceID).Msg("dropping invalid match summary")
			continue
		}
		valid = append(valid, summary)
	}

	inferrer, err := s.refs.Inferrer(ctx)
	if err != nil {
		return repository.BatchResult{Seen: len(summaries), Failed: invalid}, err
	}

	res, err := s.matches.UpsertSummaries(ctx, valid, inferrer)
	res.Seen += invalid
	res.Failed += invalid
	if err != nil {
		return res, crerr.Wrap(err, "failed to store match summaries")
	}
	return res, nil
}

// IngestDetail stores a parsed detail page. Player lines failing validation are counted as
// failed and skipped.
func (s *IngestService) IngestDetail(ctx context.Context, detail *domain.MatchDetail, url string) (repository.DetailResult, error) {
	invalid := 0
	stats := make([]domain.PlayerStat, 0, len(detail.Stats))
	for _, stat := range detail.Stats {
		if err := s.validate.Struct(stat); err != nil {
			invalid++
			s.logger.Warn().Err(err).Str("match_source_id", detail.SourceID).Msg("dropping invalid player line")
			continue
		}
		stats = append(stats, stat)
	}
	filtered := *detail
	filtered.Stats = stats

	inferrer, err := s.refs.Inferrer(ctx)
	if err != nil {
		return repository.DetailResult{Failed: invalid}, err
	}

	res, err := s.matches.IngestDetail(ctx, &filtered, url, inferrer)
	res.Failed += invalid
	if err != nil {
		return res, crerr.Wrapf(err, "failed to store match %s", detail.SourceID)
	}
	return res, nil
}
