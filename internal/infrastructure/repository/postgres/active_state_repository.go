package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	qb "github.com/riskibarqy/scorekeeper/internal/platform/querybuilder"
)

// ActiveStateRepository keeps the in-progress match in a single row.
type ActiveStateRepository struct {
	db *sqlx.DB
}

func NewActiveStateRepository(db *sqlx.DB) *ActiveStateRepository {
	return &ActiveStateRepository{db: db}
}

func (r *ActiveStateRepository) SaveActive(ctx context.Context, active matchrecord.ActiveMatch) error {
	model, err := activeToRow(active)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel(activeMatchTable, model, `ON CONFLICT (id)
DO UPDATE SET
    match_id = EXCLUDED.match_id,
    state = EXCLUDED.state,
    rules = EXCLUDED.rules,
    sets = EXCLUDED.sets,
    current_set_points = EXCLUDED.current_set_points,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert active match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert active match: %w", err)
	}
	return nil
}

func (r *ActiveStateRepository) LoadActive(ctx context.Context) (matchrecord.ActiveMatch, bool, error) {
	query, args, err := qb.Select("*").From(activeMatchTable).
		Where(qb.Eq("id", activeMatchRowID)).
		ToSQL()
	if err != nil {
		return matchrecord.ActiveMatch{}, false, fmt.Errorf("build get active match query: %w", err)
	}

	var row activeMatchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchrecord.ActiveMatch{}, false, nil
		}
		return matchrecord.ActiveMatch{}, false, fmt.Errorf("get active match: %w", err)
	}

	active, err := activeFromRow(row)
	if err != nil {
		return matchrecord.ActiveMatch{}, false, err
	}
	return active, true, nil
}

func (r *ActiveStateRepository) ClearActive(ctx context.Context) error {
	query, args, err := qb.DeleteFrom(activeMatchTable).Where(qb.Eq("id", activeMatchRowID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete active match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete active match: %w", err)
	}
	return nil
}

func activeToRow(active matchrecord.ActiveMatch) (activeMatchTableModel, error) {
	state, err := encodeJSON(stateToDocument(active.State))
	if err != nil {
		return activeMatchTableModel{}, fmt.Errorf("encode active state: %w", err)
	}
	rules, err := encodeRules(active.Rules)
	if err != nil {
		return activeMatchTableModel{}, err
	}
	sets, err := encodeJSON(setsToDocuments(active.Sets))
	if err != nil {
		return activeMatchTableModel{}, fmt.Errorf("encode active sets: %w", err)
	}
	points, err := encodeJSON(pointsToDocuments(active.CurrentSetPoints))
	if err != nil {
		return activeMatchTableModel{}, fmt.Errorf("encode active points: %w", err)
	}

	updatedAt := active.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return activeMatchTableModel{
		ID:               activeMatchRowID,
		MatchID:          active.MatchID,
		State:            state,
		Rules:            rules,
		Sets:             sets,
		CurrentSetPoints: points,
		UpdatedAt:        updatedAt.UTC(),
	}, nil
}

func activeFromRow(row activeMatchTableModel) (matchrecord.ActiveMatch, error) {
	var state stateDocument
	if err := decodeJSON(row.State, &state); err != nil {
		return matchrecord.ActiveMatch{}, fmt.Errorf("decode active state: %w", err)
	}
	rules, err := decodeRules(row.Rules)
	if err != nil {
		return matchrecord.ActiveMatch{}, err
	}
	var sets []setDocument
	if err := decodeJSON(row.Sets, &sets); err != nil {
		return matchrecord.ActiveMatch{}, fmt.Errorf("decode active sets: %w", err)
	}
	var points []pointDocument
	if err := decodeJSON(row.CurrentSetPoints, &points); err != nil {
		return matchrecord.ActiveMatch{}, fmt.Errorf("decode active points: %w", err)
	}

	return matchrecord.ActiveMatch{
		MatchID:          row.MatchID,
		State:            stateFromDocument(state),
		Rules:            rules,
		Sets:             setsFromDocuments(sets),
		CurrentSetPoints: pointsFromDocuments(points),
		UpdatedAt:        row.UpdatedAt,
	}, nil
}
