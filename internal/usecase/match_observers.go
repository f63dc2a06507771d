package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
)

const DefaultActiveSaveTimeout = 2 * time.Second

// ActiveStatePersister keeps the active match row in step with the session.
// It runs under the session lock, so every write is bounded by timeout.
type ActiveStatePersister struct {
	repo    matchrecord.ActiveStateRepository
	timeout time.Duration
	logger  *logging.Logger
}

func NewActiveStatePersister(repo matchrecord.ActiveStateRepository, timeout time.Duration, logger *logging.Logger) *ActiveStatePersister {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = DefaultActiveSaveTimeout
	}
	return &ActiveStatePersister{repo: repo, timeout: timeout, logger: logger}
}

func (p *ActiveStatePersister) OnStateChange(ctx context.Context, change StateChange) {
	if change.Action == ActionRestore {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if change.Action == ActionAbandon {
		if err := p.repo.ClearActive(ctx); err != nil {
			p.logger.WarnContext(ctx, "clear active match failed", "match_id", change.Snapshot.MatchID, "error", err)
		}
		return
	}

	snap := change.Snapshot
	err := p.repo.SaveActive(ctx, matchrecord.ActiveMatch{
		MatchID:          snap.MatchID,
		State:            snap.State,
		Rules:            snap.Rules,
		Sets:             snap.Sets,
		CurrentSetPoints: snap.CurrentSetPoints,
		UpdatedAt:        snap.UpdatedAt,
	})
	if err != nil {
		p.logger.WarnContext(ctx, "save active match failed",
			"match_id", snap.MatchID,
			"action", string(change.Action),
			"error", err,
		)
	}
}

// SessionMetrics receives scoring counters.
type SessionMetrics interface {
	MatchStarted()
	PointScored(slot string)
	ScoreCorrected(slot string)
	SetWon(slot string)
	MatchFinished()
	ServeSwitched()
	Undone()
}

// MetricsObserver translates state changes into SessionMetrics calls.
type MetricsObserver struct {
	metrics SessionMetrics
}

func NewMetricsObserver(metrics SessionMetrics) *MetricsObserver {
	return &MetricsObserver{metrics: metrics}
}

func (o *MetricsObserver) OnStateChange(_ context.Context, change StateChange) {
	if o == nil || o.metrics == nil {
		return
	}
	state := change.Snapshot.State

	switch change.Action {
	case ActionStart:
		o.metrics.MatchStarted()
	case ActionPoint:
		o.metrics.PointScored(playerSlot(state.Player1.ID, change.PlayerID))
		if change.Outcome.SetWon {
			o.metrics.SetWon(playerSlot(state.Player1.ID, change.Outcome.SetWinnerID))
		}
		if change.Outcome.MatchFinished {
			o.metrics.MatchFinished()
		}
	case ActionCorrection:
		o.metrics.ScoreCorrected(playerSlot(state.Player1.ID, change.PlayerID))
	case ActionServeSwitch:
		o.metrics.ServeSwitched()
	case ActionUndo:
		o.metrics.Undone()
	}
}

func playerSlot(player1ID, playerID int) string {
	if playerID == player1ID {
		return "player1"
	}
	return "player2"
}
