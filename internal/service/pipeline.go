package service

import (
	"context"
	"fmt"
	"strings"
	"vct-status/internal/constants"
	"vct-status/internal/domain"
	"vct-status/internal/repository"
	"vct-status/internal/vlr"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ListPages are the index pages read by ScrapeMatchList, in order.
var ListPages = []string{constants.UpcomingMatchesPath, constants.ResultsMatchesPath}

type PipelineService struct {
	fetcher  vlr.PageFetcher
	parser   *vlr.Parser
	ingest   *IngestService
	runs     *repository.RunRepository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewPipelineService(fetcher vlr.PageFetcher, parser *vlr.Parser, ingest *IngestService, runs *repository.RunRepository, logger zerolog.Logger) *PipelineService {
	return &PipelineService{
		fetcher:  fetcher,
		parser:   parser,
		ingest:   ingest,
		runs:     runs,
		validate: validator.New(),
		logger:   logger,
	}
}

// PageReport is the outcome of one list page.
type PageReport struct {
	Path    string
	Fetched bool
	Result  repository.BatchResult
	Err     error
}

type ListReport struct {
	Run   *domain.ScrapeRun
	Pages []PageReport
}

type DetailReport struct {
	Run      *domain.ScrapeRun
	Result   repository.DetailResult
	Degraded bool
}

// ScrapeMatchList reads every page of ListPages and stores its summaries as one batch per page.
// A page that cannot be fetched or parsed is skipped. A batch that fails to commit does not stop
// the remaining pages; its error is returned once all pages ran. When no page could be fetched
// at all the fetch errors are returned.
func (s *PipelineService) ScrapeMatchList(ctx context.Context) (*ListReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.PipelineTimeout)
	defer cancel()

	run, err := s.runs.Start(ctx, domain.RunKindList, strings.Join(ListPages, ","))
	if err != nil {
		return nil, err
	}
	report := &ListReport{Run: run}

	var fetchErrs, fatal error
	for _, path := range ListPages {
		page := PageReport{Path: path}

		html, err := s.fetcher.Fetch(ctx, path)
		if err != nil {
			run.PagesFailed++
			page.Err = err
			fetchErrs = crerr.CombineErrors(fetchErrs, err)
			s.logger.Error().Err(err).Str("path", path).Msg("failed to fetch list page, skipping")
			report.Pages = append(report.Pages, page)
			continue
		}
		page.Fetched = true
		run.PagesFetched++

		summaries, err := s.parser.ParseMatchList(html, s.fetcher.URL(path))
		if err != nil {
			run.PagesFailed++
			page.Err = err
			s.logger.Error().Err(err).Str("path", path).Msg("failed to parse list page, skipping")
			report.Pages = append(report.Pages, page)
			continue
		}

		res, err := s.ingest.IngestSummaries(ctx, summaries)
		page.Result = res
		run.RecordsSeen += res.Seen
		run.RecordsWritten += res.Written()
		run.RecordsFailed += res.Failed
		if err != nil {
			page.Err = err
			fatal = crerr.CombineErrors(fatal, crerr.Wrapf(err, "page %s", path))
			s.logger.Error().Err(err).Str("path", path).Str("stack", fmt.Sprintf("%+v", err)).Msg("match batch rolled back")
		}

		s.logger.Info().
			Str("path", path).
			Int("seen", res.Seen).
			Int("created", res.Created).
			Int("updated", res.Updated).
			Int("unchanged", res.Unchanged).
			Int("failed", res.Failed).
			Msg("list page stored")
		report.Pages = append(report.Pages, page)
	}

	result := fatal
	if run.PagesFetched == 0 && fetchErrs != nil {
		result = crerr.CombineErrors(result, crerr.Wrap(fetchErrs, "no list page could be fetched"))
	}

	switch {
	case result != nil:
		run.Status = domain.RunStatusFailed
	case run.PagesFailed > 0 || run.RecordsFailed > 0:
		run.Status = domain.RunStatusPartial
	default:
		run.Status = domain.RunStatusOK
	}
	if msg := errorText(result, fetchErrs); msg != "" {
		run.Error = &msg
	}
	s.finish(ctx, run)

	return report, result
}

// ScrapeMatchDetails reads the detail page of one match and stores its header and player lines
// in one transaction.
func (s *PipelineService) ScrapeMatchDetails(ctx context.Context, sourceID string) (*DetailReport, error) {
	sourceID = strings.TrimSpace(sourceID)
	if err := s.validate.Var(sourceID, "required,number"); err != nil {
		return nil, crerr.Wrapf(ErrInvalidInput, "match id %q must be numeric", sourceID)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.PipelineTimeout)
	defer cancel()

	path := "/" + sourceID
	run, err := s.runs.Start(ctx, domain.RunKindDetail, path)
	if err != nil {
		return nil, err
	}
	report := &DetailReport{Run: run}

	fail := func(err error) (*DetailReport, error) {
		run.Status = domain.RunStatusFailed
		msg := err.Error()
		run.Error = &msg
		s.finish(ctx, run)
		return report, err
	}

	html, err := s.fetcher.Fetch(ctx, path)
	if err != nil {
		run.PagesFailed++
		return fail(crerr.Wrapf(err, "failed to fetch match %s", sourceID))
	}
	run.PagesFetched++

	detail, err := s.parser.ParseMatchDetail(html, sourceID)
	if err != nil {
		run.PagesFailed++
		return fail(err)
	}
	report.Degraded = detail.Degraded
	if len(detail.Stats) == 0 {
		s.logger.Warn().Str("match_source_id", sourceID).Msg("no player stats on detail page")
	}

	res, err := s.ingest.IngestDetail(ctx, detail, s.fetcher.URL(path))
	report.Result = res
	run.RecordsSeen = len(detail.Stats)
	run.RecordsWritten = res.StatsInserted
	run.RecordsFailed = res.Failed
	if err != nil {
		s.logger.Error().Err(err).Str("match_source_id", sourceID).Str("stack", fmt.Sprintf("%+v", err)).Msg("match detail rolled back")
		return fail(err)
	}

	run.Status = domain.RunStatusOK
	if res.Failed > 0 || detail.Degraded {
		run.Status = domain.RunStatusPartial
	}
	s.finish(ctx, run)

	s.logger.Info().
		Str("match_source_id", sourceID).
		Bool("match_created", res.MatchCreated).
		Int("players_created", res.PlayersCreated).
		Int("stats_inserted", res.StatsInserted).
		Int("stats_skipped", res.StatsSkipped).
		Int("failed", res.Failed).
		Msg("match details stored")
	return report, nil
}

// finish records the run outcome even when ctx is already cancelled.
func (s *PipelineService) finish(ctx context.Context, run *domain.ScrapeRun) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DatabaseTimeout)
	defer cancel()

	if err := s.runs.Finish(ctx, run); err != nil {
		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to record scrape run outcome")
	}
}

func errorText(errs ...error) string {
	var parts []string
	seen := make(map[string]struct{})
	for _, err := range errs {
		if err == nil {
			continue
		}
		msg := err.Error()
		if _, ok := seen[msg]; ok {
			continue
		}
		seen[msg] = struct{}{}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}
