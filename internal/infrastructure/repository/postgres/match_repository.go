package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	qb "github.com/riskibarqy/scorekeeper/internal/platform/querybuilder"
)

type MatchRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db, now: time.Now}
}

// Save upserts the match and replaces its sets and points.
func (r *MatchRepository) Save(ctx context.Context, match matchrecord.Match) error {
	if err := match.ValidateBasic(); err != nil {
		return fmt.Errorf("validate match: %w", err)
	}

	rules, err := encodeRules(match.Rules)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	matchQuery, matchArgs, err := qb.InsertModel(matchesTable, matchTableModel{
		ID:             match.ID,
		PlayerOneID:    match.PlayerOneID,
		PlayerTwoID:    match.PlayerTwoID,
		PlayerOneName:  match.PlayerOneName,
		PlayerTwoName:  match.PlayerTwoName,
		PlayerOneScore: match.PlayerOneScore,
		PlayerTwoScore: match.PlayerTwoScore,
		PlayedAt:       match.Date,
		WinnerID:       nullInt64FromPlayer(match.WinnerID),
		Rules:          rules,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, `ON CONFLICT (id)
DO UPDATE SET
    player_one_id = EXCLUDED.player_one_id,
    player_two_id = EXCLUDED.player_two_id,
    player_one_name = EXCLUDED.player_one_name,
    player_two_name = EXCLUDED.player_two_name,
    player_one_score = EXCLUDED.player_one_score,
    player_two_score = EXCLUDED.player_two_score,
    played_at = EXCLUDED.played_at,
    winner_id = EXCLUDED.winner_id,
    rules = EXCLUDED.rules,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save match tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, matchQuery, matchArgs...); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}

	// Points reference sets, so clear them first.
	for _, table := range []string{matchPointsTable, matchSetsTable} {
		query, args, err := qb.DeleteFrom(table).Where(qb.Eq("match_id", match.ID)).ToSQL()
		if err != nil {
			return fmt.Errorf("build delete %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	sets, points := splitSets(match.ID, match.Sets)
	if len(sets) > 0 {
		query, args, err := qb.InsertModels(matchSetsTable, sets, "")
		if err != nil {
			return fmt.Errorf("build insert match sets query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert match sets: %w", err)
		}
	}
	if len(points) > 0 {
		query, args, err := qb.InsertModels(matchPointsTable, points, "")
		if err != nil {
			return fmt.Errorf("build insert match points query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert match points: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save match tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) List(ctx context.Context, limit int) ([]matchrecord.Match, error) {
	query, args, err := qb.Select("*").From(matchesTable).
		OrderBy("played_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}
	if len(rows) == 0 {
		return []matchrecord.Match{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	setsByMatch, err := r.loadSets(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]matchrecord.Match, 0, len(rows))
	for _, row := range rows {
		item, err := matchFromRow(row, setsByMatch[row.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (matchrecord.Match, bool, error) {
	query, args, err := qb.Select("*").From(matchesTable).
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return matchrecord.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchrecord.Match{}, false, nil
		}
		return matchrecord.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}

	setsByMatch, err := r.loadSets(ctx, []string{row.ID})
	if err != nil {
		return matchrecord.Match{}, false, err
	}
	item, err := matchFromRow(row, setsByMatch[row.ID])
	if err != nil {
		return matchrecord.Match{}, false, err
	}
	return item, true, nil
}

func (r *MatchRepository) loadSets(ctx context.Context, matchIDs []string) (map[string][]matchrecord.Set, error) {
	setQuery, setArgs, err := qb.Select("*").From(matchSetsTable).
		Where(qb.Any("match_id", pq.Array(matchIDs))).
		OrderBy("match_id", "set_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match sets query: %w", err)
	}
	var setRows []matchSetTableModel
	if err := r.db.SelectContext(ctx, &setRows, setQuery, setArgs...); err != nil {
		return nil, fmt.Errorf("select match sets: %w", err)
	}

	pointQuery, pointArgs, err := qb.Select("*").From(matchPointsTable).
		Where(qb.Any("match_id", pq.Array(matchIDs))).
		OrderBy("match_id", "set_number", "sequence").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match points query: %w", err)
	}
	var pointRows []matchPointTableModel
	if err := r.db.SelectContext(ctx, &pointRows, pointQuery, pointArgs...); err != nil {
		return nil, fmt.Errorf("select match points: %w", err)
	}

	return joinSets(setRows, pointRows), nil
}

func splitSets(matchID string, sets []matchrecord.Set) ([]any, []any) {
	setRows := make([]any, 0, len(sets))
	var pointRows []any
	for _, s := range sets {
		setRows = append(setRows, matchSetTableModel{
			MatchID:        matchID,
			SetNumber:      s.SetNumber,
			PlayerOneScore: s.FinalScore.Player1Score,
			PlayerTwoScore: s.FinalScore.Player2Score,
			WinnerID:       s.WinnerID,
		})
		for _, p := range s.Points {
			pointRows = append(pointRows, matchPointTableModel{
				MatchID:        matchID,
				SetNumber:      s.SetNumber,
				Sequence:       p.Sequence,
				ScorerID:       p.ScorerID,
				PlayerOneScore: p.Player1Score,
				PlayerTwoScore: p.Player2Score,
			})
		}
	}
	return setRows, pointRows
}

// joinSets expects both inputs ordered by match and set number.
func joinSets(setRows []matchSetTableModel, pointRows []matchPointTableModel) map[string][]matchrecord.Set {
	type setKey struct {
		matchID   string
		setNumber int
	}
	points := make(map[setKey][]matchrecord.Point, len(setRows))
	for _, p := range pointRows {
		key := setKey{matchID: p.MatchID, setNumber: p.SetNumber}
		points[key] = append(points[key], matchrecord.Point{
			Sequence:     p.Sequence,
			ScorerID:     p.ScorerID,
			Player1Score: p.PlayerOneScore,
			Player2Score: p.PlayerTwoScore,
		})
	}

	out := make(map[string][]matchrecord.Set)
	for _, s := range setRows {
		out[s.MatchID] = append(out[s.MatchID], matchrecord.Set{
			SetNumber:  s.SetNumber,
			Points:     points[setKey{matchID: s.MatchID, setNumber: s.SetNumber}],
			FinalScore: matchrecord.SetScore{Player1Score: s.PlayerOneScore, Player2Score: s.PlayerTwoScore},
			WinnerID:   s.WinnerID,
		})
	}
	return out
}

func matchFromRow(row matchTableModel, sets []matchrecord.Set) (matchrecord.Match, error) {
	rules, err := decodeRules(row.Rules)
	if err != nil {
		return matchrecord.Match{}, fmt.Errorf("match %s: %w", row.ID, err)
	}
	return matchrecord.Match{
		ID:             row.ID,
		PlayerOneID:    row.PlayerOneID,
		PlayerTwoID:    row.PlayerTwoID,
		PlayerOneName:  row.PlayerOneName,
		PlayerTwoName:  row.PlayerTwoName,
		PlayerOneScore: row.PlayerOneScore,
		PlayerTwoScore: row.PlayerTwoScore,
		Date:           row.PlayedAt,
		WinnerID:       playerFromNullInt64(row.WinnerID),
		Rules:          rules,
		Sets:           sets,
	}, nil
}
