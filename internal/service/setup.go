package service

import (
	"context"
	"database/sql"
	"vct-status/internal/constants"
	"vct-status/internal/database"
	"vct-status/internal/repository"

	"github.com/rs/zerolog"
)

// SetupService owns schema lifecycle and reference data.
type SetupService struct {
	sqlDB  *sql.DB
	refs   *repository.ReferenceRepository
	logger zerolog.Logger
}

func NewSetupService(sqlDB *sql.DB, refs *repository.ReferenceRepository, logger zerolog.Logger) *SetupService {
	return &SetupService{sqlDB: sqlDB, refs: refs, logger: logger}
}

// InitDB brings the schema up to date and seeds the reference tables. With drop every table
// is dropped and recreated first, losing all stored data.
func (s *SetupService) InitDB(ctx context.Context, drop bool) (repository.SeedResult, error) {
	if drop {
		if err := database.Reset(s.sqlDB, s.logger); err != nil {
			return repository.SeedResult{}, err
		}
	}
	return s.Seed(ctx)
}

func (s *SetupService) Seed(ctx context.Context) (repository.SeedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := s.refs.Seed(ctx)
	if err != nil {
		return res, err
	}
	s.logger.Info().
		Int("regions_added", res.RegionsAdded).
		Int("competition_types_added", res.CompetitionTypesAdded).
		Msg("reference data seeded")
	return res, nil
}

type DBStatus struct {
	Version int64
	Counts  repository.TableCounts
}

// Check verifies the database answers and reports the migration version and row counts.
func (s *SetupService) Check(ctx context.Context) (*DBStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	version, err := database.Ping(s.sqlDB)
	if err != nil {
		return nil, err
	}
	counts, err := s.refs.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return &DBStatus{Version: version, Counts: counts}, nil
}
