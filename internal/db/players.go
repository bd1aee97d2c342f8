package db

import (
	"context"
)

const getPlayerBySourceID = `
SELECT id, player_source_id, name, created_at, updated_at
FROM players
WHERE player_source_id = ?
`

func (q *Queries) GetPlayerBySourceID(ctx context.Context, playerSourceID string) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayerBySourceID, playerSourceID)
	var i Player
	err := row.Scan(&i.ID, &i.PlayerSourceID, &i.Name, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getPlayerByName = `
SELECT id, player_source_id, name, created_at, updated_at
FROM players
WHERE name = ?
ORDER BY id
LIMIT 1
`

func (q *Queries) GetPlayerByName(ctx context.Context, name string) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayerByName, name)
	var i Player
	err := row.Scan(&i.ID, &i.PlayerSourceID, &i.Name, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const insertPlayer = `
INSERT INTO players (player_source_id, name)
VALUES (?, ?)
RETURNING id
`

type InsertPlayerParams struct {
	PlayerSourceID *string
	Name           string
}

func (q *Queries) InsertPlayer(ctx context.Context, arg InsertPlayerParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertPlayer, arg.PlayerSourceID, arg.Name)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const setPlayerSourceID = `
UPDATE players
SET player_source_id = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND player_source_id IS NULL
`

type SetPlayerSourceIDParams struct {
	PlayerSourceID string
	ID             int64
}

func (q *Queries) SetPlayerSourceID(ctx context.Context, arg SetPlayerSourceIDParams) error {
	_, err := q.db.ExecContext(ctx, setPlayerSourceID, arg.PlayerSourceID, arg.ID)
	return err
}
