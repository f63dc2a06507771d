package postgres

import (
	"database/sql"
	"errors"

	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullInt64FromPlayer(id scoring.NullPlayerID) sql.NullInt64 {
	if !id.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id.ID), Valid: true}
}

func playerFromNullInt64(v sql.NullInt64) scoring.NullPlayerID {
	if !v.Valid {
		return scoring.NoPlayer()
	}
	return scoring.SomePlayer(int(v.Int64))
}
