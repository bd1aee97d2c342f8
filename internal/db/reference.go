package db

import (
	"context"
)

const insertRegion = `
INSERT INTO regions (name, tag, abbreviation, inference_priority)
VALUES (?, ?, ?, ?)
ON CONFLICT DO NOTHING
`

type InsertRegionParams struct {
	Name              string
	Tag               string
	Abbreviation      string
	InferencePriority int64
}

// InsertRegion reports the number of rows written, 0 when the region already exists.
func (q *Queries) InsertRegion(ctx context.Context, arg InsertRegionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertRegion, arg.Name, arg.Tag, arg.Abbreviation, arg.InferencePriority)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listRegions = `
SELECT id, name, tag, abbreviation, inference_priority, created_at
FROM regions
ORDER BY inference_priority, id
`

func (q *Queries) ListRegions(ctx context.Context) ([]Region, error) {
	rows, err := q.db.QueryContext(ctx, listRegions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Region
	for rows.Next() {
		var i Region
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Tag,
			&i.Abbreviation,
			&i.InferencePriority,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertCompetitionType = `
INSERT INTO competition_types (name, tag, description)
VALUES (?, ?, ?)
ON CONFLICT DO NOTHING
`

type InsertCompetitionTypeParams struct {
	Name        string
	Tag         string
	Description *string
}

func (q *Queries) InsertCompetitionType(ctx context.Context, arg InsertCompetitionTypeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertCompetitionType, arg.Name, arg.Tag, arg.Description)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listCompetitionTypes = `
SELECT id, name, tag, description, created_at
FROM competition_types
ORDER BY id
`

func (q *Queries) ListCompetitionTypes(ctx context.Context) ([]CompetitionType, error) {
	rows, err := q.db.QueryContext(ctx, listCompetitionTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CompetitionType
	for rows.Next() {
		var i CompetitionType
		if err := rows.Scan(&i.ID, &i.Name, &i.Tag, &i.Description, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTables = `
SELECT
    (SELECT COUNT(*) FROM regions),
    (SELECT COUNT(*) FROM competition_types),
    (SELECT COUNT(*) FROM matches),
    (SELECT COUNT(*) FROM players),
    (SELECT COUNT(*) FROM player_match_stats)
`

type CountTablesRow struct {
	Regions          int64
	CompetitionTypes int64
	Matches          int64
	Players          int64
	PlayerMatchStats int64
}

func (q *Queries) CountTables(ctx context.Context) (CountTablesRow, error) {
	row := q.db.QueryRowContext(ctx, countTables)
	var i CountTablesRow
	err := row.Scan(
		&i.Regions,
		&i.CompetitionTypes,
		&i.Matches,
		&i.Players,
		&i.PlayerMatchStats,
	)
	return i, err
}
