package repository

import (
	"context"
	"database/sql"
	"vct-status/internal/db"
	"vct-status/internal/domain"
	"vct-status/internal/region"

	crerr "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

type ReferenceRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewReferenceRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ReferenceRepository {
	return &ReferenceRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

type SeedResult struct {
	RegionsAdded          int
	CompetitionTypesAdded int
}

// Seed inserts the reference regions and competition types that are missing.
func (r *ReferenceRepository) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, crerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for _, s := range region.Seeds {
		n, err := qtx.InsertRegion(ctx, db.InsertRegionParams{
			Name:              s.Name,
			Tag:               s.Tag,
			Abbreviation:      s.Abbreviation,
			InferencePriority: int64(s.Priority),
		})
		if err != nil {
			return res, crerr.Wrapf(err, "failed to seed region %s", s.Tag)
		}
		res.RegionsAdded += int(n)
	}

	for _, s := range region.CompetitionSeeds {
		description := s.Description
		n, err := qtx.InsertCompetitionType(ctx, db.InsertCompetitionTypeParams{
			Name:        s.Name,
			Tag:         s.Tag,
			Description: &description,
		})
		if err != nil {
			return res, crerr.Wrapf(err, "failed to seed competition type %s", s.Tag)
		}
		res.CompetitionTypesAdded += int(n)
	}

	if err := tx.Commit(); err != nil {
		return res, crerr.Wrap(err, "failed to commit seed data")
	}
	return res, nil
}

// Inferrer loads the inference rules from the stored reference tables.
func (r *ReferenceRepository) Inferrer(ctx context.Context) (region.Inferrer, error) {
	regionRows, err := r.queries.ListRegions(ctx)
	if err != nil {
		return region.Inferrer{}, crerr.Wrap(err, "failed to list regions")
	}
	regions := make([]domain.Region, len(regionRows))
	for i, row := range regionRows {
		regions[i] = domain.Region{
			ID:                row.ID,
			Name:              row.Name,
			Tag:               row.Tag,
			Abbreviation:      row.Abbreviation,
			InferencePriority: int(row.InferencePriority),
		}
	}

	typeRows, err := r.queries.ListCompetitionTypes(ctx)
	if err != nil {
		return region.Inferrer{}, crerr.Wrap(err, "failed to list competition types")
	}
	types := make([]domain.CompetitionType, len(typeRows))
	for i, row := range typeRows {
		types[i] = domain.CompetitionType{ID: row.ID, Name: row.Name, Tag: row.Tag, Description: row.Description}
	}

	if len(regions) == 0 {
		r.logger.Warn().Msg("no regions stored, region inference disabled (run seed-db)")
	}

	return region.Inferrer{
		Regions:      region.FromRegions(regions),
		Competitions: region.CompetitionRulesFromTypes(types),
	}, nil
}

type TableCounts struct {
	Regions          int64
	CompetitionTypes int64
	Matches          int64
	Players          int64
	PlayerMatchStats int64
}

func (r *ReferenceRepository) Counts(ctx context.Context) (TableCounts, error) {
	row, err := r.queries.CountTables(ctx)
	if err != nil {
		return TableCounts{}, crerr.Wrap(err, "failed to count rows")
	}
	return TableCounts(row), nil
}
