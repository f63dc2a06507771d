package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/scorekeeper/internal/domain/history"
	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
	"github.com/riskibarqy/scorekeeper/internal/platform/id"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// Action names what produced a state change.
type Action string

const (
	ActionStart       Action = "start"
	ActionRestore     Action = "restore"
	ActionPoint       Action = "point"
	ActionCorrection  Action = "correction"
	ActionServeSwitch Action = "serve_switch"
	ActionUndo        Action = "undo"
	ActionAbandon     Action = "abandon"
)

// StateChange is delivered to observers after every applied operation.
type StateChange struct {
	Action   Action
	Snapshot MatchSnapshot
	Previous scoring.MatchState
	PlayerID int
	Outcome  scoring.PointOutcome
}

// StateObserver is notified in operation order while the session lock is
// held. Implementations must not call back into the session.
type StateObserver interface {
	OnStateChange(ctx context.Context, change StateChange)
}

type StateObserverFunc func(ctx context.Context, change StateChange)

func (f StateObserverFunc) OnStateChange(ctx context.Context, change StateChange) {
	f(ctx, change)
}

// MatchRecorder persists finished matches. It must not block the caller on I/O.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, match matchrecord.Match)
}

type noopMatchRecorder struct{}

func (noopMatchRecorder) RecordMatch(context.Context, matchrecord.Match) {}

func NewNoopMatchRecorder() MatchRecorder {
	return noopMatchRecorder{}
}

type StartMatchInput struct {
	Player1ID   int
	Player2ID   int
	Player1Name string
	Player2Name string
	// Rules overrides the session defaults when set.
	Rules *scoring.Rules
	// ContinueFromPrevious lets the previous match winner decide the first
	// server of the new match.
	ContinueFromPrevious bool
}

// MatchSnapshot is a read-only copy of the session.
type MatchSnapshot struct {
	MatchID          string
	State            scoring.MatchState
	Rules            scoring.Rules
	CanUndo          bool
	Sets             []matchrecord.Set
	CurrentSetPoints []matchrecord.Point
	UpdatedAt        time.Time
}

// MatchSession owns the one match being scored. All operations are
// serialized.
type MatchSession struct {
	mu           sync.Mutex
	defaultRules scoring.Rules
	ids          id.Generator
	recorder     MatchRecorder
	observers    []StateObserver
	activeRepo   matchrecord.ActiveStateRepository
	logger       *logging.Logger
	now          func() time.Time

	active      bool
	matchID     string
	rules       scoring.Rules
	state       scoring.MatchState
	history     *history.Manager
	ledger      *matchrecord.Ledger
	checkpoints []matchrecord.Checkpoint
	updatedAt   time.Time
}

func NewMatchSession(
	defaultRules scoring.Rules,
	ids id.Generator,
	recorder MatchRecorder,
	activeRepo matchrecord.ActiveStateRepository,
	logger *logging.Logger,
	observers ...StateObserver,
) *MatchSession {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if recorder == nil {
		recorder = NewNoopMatchRecorder()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchSession{
		defaultRules: defaultRules,
		ids:          ids,
		recorder:     recorder,
		observers:    observers,
		activeRepo:   activeRepo,
		logger:       logger,
		now:          time.Now,
		history:      history.NewManager(),
		ledger:       matchrecord.NewLedger(),
	}
}

// AddObserver registers an observer. Call before serving requests.
func (s *MatchSession) AddObserver(observer StateObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

func (s *MatchSession) DefaultRules() scoring.Rules {
	return s.defaultRules
}

func (s *MatchSession) Start(ctx context.Context, input StartMatchInput) (MatchSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSession.Start")
	defer span.End()

	input.Player1Name = strings.TrimSpace(input.Player1Name)
	input.Player2Name = strings.TrimSpace(input.Player2Name)
	if err := validateStartInput(input); err != nil {
		return MatchSnapshot{}, err
	}

	rules := s.defaultRules
	if input.Rules != nil {
		rules = *input.Rules
	}
	if err := rules.Validate(); err != nil {
		return MatchSnapshot{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return MatchSnapshot{}, fmt.Errorf("generate match id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lastWinner := scoring.NoPlayer()
	if input.ContinueFromPrevious && s.active && s.state.IsFinished {
		lastWinner = scoring.DetermineWinner(s.state)
	}
	previous := s.state

	s.active = true
	s.matchID = matchID
	s.rules = rules
	s.state = scoring.ResetGame(input.Player1ID, input.Player2ID, input.Player1Name, input.Player2Name, rules, lastWinner)
	s.history.Reset(s.state)
	s.ledger.Reset()
	s.checkpoints = []matchrecord.Checkpoint{s.ledger.Checkpoint()}
	s.updatedAt = s.now().UTC()

	s.logger.InfoContext(ctx, "match started",
		"match_id", matchID,
		"player1_id", input.Player1ID,
		"player2_id", input.Player2ID,
		"first_server", s.state.ServingPlayerID.Int(),
	)

	snapshot := s.snapshotLocked()
	s.notifyLocked(ctx, StateChange{Action: ActionStart, Snapshot: snapshot, Previous: previous})
	return snapshot, nil
}

func (s *MatchSession) ScorePoint(ctx context.Context, playerID int) (MatchSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSession.ScorePoint", attribute.Int("player_id", playerID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePlayerLocked(playerID); err != nil {
		return MatchSnapshot{}, err
	}

	previous := s.state
	next, outcome := scoring.ScorePoint(previous, s.rules, playerID)
	if !outcome.Applied {
		return s.snapshotLocked(), nil
	}

	s.ledger.Apply(outcome)
	s.commitLocked(next)

	if outcome.SetWon {
		s.logger.InfoContext(ctx, "set won",
			"match_id", s.matchID,
			"set_number", outcome.SetNumber,
			"winner_id", outcome.SetWinnerID,
			"score", fmt.Sprintf("%d-%d", outcome.Player1Score, outcome.Player2Score),
		)
	}

	snapshot := s.snapshotLocked()
	s.notifyLocked(ctx, StateChange{
		Action:   ActionPoint,
		Snapshot: snapshot,
		Previous: previous,
		PlayerID: playerID,
		Outcome:  outcome,
	})
	s.recordIfFinishedLocked(ctx, previous)
	return snapshot, nil
}

// CorrectScore takes one point away from playerID. Serve, deuce and sets are
// left untouched.
func (s *MatchSession) CorrectScore(ctx context.Context, playerID int) (MatchSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSession.CorrectScore", attribute.Int("player_id", playerID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePlayerLocked(playerID); err != nil {
		return MatchSnapshot{}, err
	}

	previous := s.state
	next := scoring.DecrementScore(previous, playerID)
	if next == previous {
		return s.snapshotLocked(), nil
	}
	s.commitLocked(next)

	snapshot := s.snapshotLocked()
	s.notifyLocked(ctx, StateChange{Action: ActionCorrection, Snapshot: snapshot, Previous: previous, PlayerID: playerID})
	return snapshot, nil
}

func (s *MatchSession) SwitchServe(ctx context.Context) (MatchSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSession.SwitchServe")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return MatchSnapshot{}, ErrNoActiveMatch
	}

	previous := s.state
	next := scoring.SwitchServe(previous)
	if next == previous {
		return s.snapshotLocked(), nil
	}
	s.commitLocked(next)

	snapshot := s.snapshotLocked()
	s.notifyLocked(ctx, StateChange{Action: ActionServeSwitch, Snapshot: snapshot, Previous: previous})
	return snapshot, nil
}

// Undo restores the previous snapshot. With nothing to undo the current
// state is returned unchanged.
func (s *MatchSession) Undo(ctx context.Context) (MatchSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSession.Undo")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return MatchSnapshot{}, ErrNoActiveMatch
	}
	if !s.history.HasHistory() {
		return s.snapshotLocked(), nil
	}

	previous := s.state
	s.state = s.history.Undo()
	s.checkpoints = s.checkpoints[:len(s.checkpoints)-1]
	s.ledger.Truncate(s.checkpoints[len(s.checkpoints)-1])
	s.updatedAt = s.now().UTC()

	snapshot := s.snapshotLocked()
	s.notifyLocked(ctx, StateChange{Action: ActionUndo, Snapshot: snapshot, Previous: previous})
	s.recordIfFinishedLocked(ctx, previous)
	return snapshot, nil
}

func (s *MatchSession) Current(ctx context.Context) (MatchSnapshot, error) {
	_, span := startUsecaseSpan(ctx, "usecase.MatchSession.Current")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return MatchSnapshot{}, ErrNoActiveMatch
	}
	return s.snapshotLocked(), nil
}

// Abandon drops the current match without recording it.
func (s *MatchSession) Abandon(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSession.Abandon")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return ErrNoActiveMatch
	}

	snapshot := s.snapshotLocked()
	s.active = false
	s.logger.InfoContext(ctx, "match abandoned", "match_id", s.matchID, "finished", s.state.IsFinished)
	s.notifyLocked(ctx, StateChange{Action: ActionAbandon, Snapshot: snapshot, Previous: snapshot.State})
	return nil
}

// Restore resumes the persisted active match, if any. It reports whether a
// match was restored.
func (s *MatchSession) Restore(ctx context.Context) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSession.Restore")
	defer span.End()

	if s.activeRepo == nil {
		return false, nil
	}

	saved, exists, err := s.activeRepo.LoadActive(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: load active match: %w", ErrDependencyUnavailable, err)
	}
	if !exists {
		return false, nil
	}
	if err := saved.Rules.Validate(); err != nil {
		return false, fmt.Errorf("restore match %s: %w", saved.MatchID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.state
	s.active = true
	s.matchID = saved.MatchID
	s.rules = saved.Rules
	s.state = saved.State
	s.history.Reset(saved.State)
	s.ledger = matchrecord.RestoreLedger(saved.Sets, saved.CurrentSetPoints, saved.State.SetNumber())
	s.checkpoints = []matchrecord.Checkpoint{s.ledger.Checkpoint()}
	s.updatedAt = saved.UpdatedAt

	s.logger.InfoContext(ctx, "match restored",
		"match_id", saved.MatchID,
		"finished", saved.State.IsFinished,
		"sets", fmt.Sprintf("%d-%d", saved.State.Player1SetsWon, saved.State.Player2SetsWon),
	)

	s.notifyLocked(ctx, StateChange{Action: ActionRestore, Snapshot: s.snapshotLocked(), Previous: previous})
	return true, nil
}

func (s *MatchSession) requirePlayerLocked(playerID int) error {
	if !s.active {
		return ErrNoActiveMatch
	}
	if !s.state.HasPlayer(playerID) {
		return fmt.Errorf("%w: player %d is not in match %s", ErrInvalidInput, playerID, s.matchID)
	}
	return nil
}

// commitLocked moves to next and records it in history, keeping one ledger
// checkpoint per history entry.
func (s *MatchSession) commitLocked(next scoring.MatchState) {
	s.state = next
	s.updatedAt = s.now().UTC()
	if !s.history.Record(next) {
		return
	}
	s.checkpoints = append(s.checkpoints, s.ledger.Checkpoint())
	if extra := len(s.checkpoints) - s.history.Len(); extra > 0 {
		s.checkpoints = append(s.checkpoints[:0:0], s.checkpoints[extra:]...)
	}
}

// recordIfFinishedLocked fires the recorder on the unfinished to finished edge.
func (s *MatchSession) recordIfFinishedLocked(ctx context.Context, previous scoring.MatchState) {
	if previous.IsFinished || !s.state.IsFinished {
		return
	}

	match := matchrecord.FromState(s.matchID, s.state, s.ledger.Sets(), s.rules, s.updatedAt)
	s.logger.InfoContext(ctx, "match finished",
		"match_id", s.matchID,
		"winner_id", match.WinnerID.Int(),
		"sets", fmt.Sprintf("%d-%d", match.PlayerOneScore, match.PlayerTwoScore),
	)
	s.recorder.RecordMatch(ctx, match)
}

func (s *MatchSession) notifyLocked(ctx context.Context, change StateChange) {
	for _, observer := range s.observers {
		observer.OnStateChange(ctx, change)
	}
}

func (s *MatchSession) snapshotLocked() MatchSnapshot {
	return MatchSnapshot{
		MatchID:          s.matchID,
		State:            s.state,
		Rules:            s.rules,
		CanUndo:          s.history.HasHistory(),
		Sets:             s.ledger.Sets(),
		CurrentSetPoints: s.ledger.CurrentSetPoints(),
		UpdatedAt:        s.updatedAt,
	}
}

func validateStartInput(input StartMatchInput) error {
	if input.Player1ID <= 0 || input.Player2ID <= 0 {
		return fmt.Errorf("%w: player ids must be positive", ErrInvalidInput)
	}
	if input.Player1ID == input.Player2ID {
		return fmt.Errorf("%w: player ids must differ", ErrInvalidInput)
	}
	if input.Player1Name == "" || input.Player2Name == "" {
		return fmt.Errorf("%w: player names are required", ErrInvalidInput)
	}
	return nil
}
