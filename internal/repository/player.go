package repository

import (
	"context"
	"database/sql"
	"vct-status/internal/db"
	"vct-status/internal/domain"

	crerr "github.com/cockroachdb/errors"
)

// resolvePlayer finds the player of a stats line by source id, then by name, and creates it
// when neither matches. A name match without a source id gets the line's id; a name match that
// already carries a different source id is treated as a different player.
func resolvePlayer(ctx context.Context, q *db.Queries, stat domain.PlayerStat) (int64, bool, error) {
	if stat.PlayerSourceID != nil {
		p, err := q.GetPlayerBySourceID(ctx, *stat.PlayerSourceID)
		if err == nil {
			return p.ID, false, nil
		}
		if !crerr.Is(err, sql.ErrNoRows) {
			return 0, false, crerr.Wrapf(err, "failed to look up player %s", *stat.PlayerSourceID)
		}
	}

	p, err := q.GetPlayerByName(ctx, stat.PlayerName)
	switch {
	case err == nil && p.PlayerSourceID != nil && stat.PlayerSourceID != nil:
		// same display name, different source id: another person
	case err == nil:
		if p.PlayerSourceID == nil && stat.PlayerSourceID != nil {
			if err := q.SetPlayerSourceID(ctx, db.SetPlayerSourceIDParams{
				PlayerSourceID: *stat.PlayerSourceID,
				ID:             p.ID,
			}); err != nil {
				return 0, false, crerr.Wrapf(err, "failed to backfill source id of %s", stat.PlayerName)
			}
		}
		return p.ID, false, nil
	case !crerr.Is(err, sql.ErrNoRows):
		return 0, false, crerr.Wrapf(err, "failed to look up player %q", stat.PlayerName)
	}

	id, err := q.InsertPlayer(ctx, db.InsertPlayerParams{
		PlayerSourceID: stat.PlayerSourceID,
		Name:           stat.PlayerName,
	})
	if err != nil {
		return 0, false, crerr.Wrapf(err, "failed to create player %q", stat.PlayerName)
	}
	return id, true, nil
}
