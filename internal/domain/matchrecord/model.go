package matchrecord

import (
	"fmt"
	"time"

	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
)

// Point is one rally. Scores are cumulative right after the point.
type Point struct {
	Sequence     int
	ScorerID     int
	Player1Score int
	Player2Score int
}

type SetScore struct {
	Player1Score int
	Player2Score int
}

// Set is the progression of one finished set.
type Set struct {
	SetNumber  int
	Points     []Point
	FinalScore SetScore
	WinnerID   int
}

// Match is the persisted summary of a finished match. PlayerOneScore and
// PlayerTwoScore are sets won.
type Match struct {
	ID             string
	PlayerOneID    int
	PlayerTwoID    int
	PlayerOneName  string
	PlayerTwoName  string
	PlayerOneScore int
	PlayerTwoScore int
	Date           int64
	WinnerID       scoring.NullPlayerID
	Rules          scoring.Rules
	Sets           []Set
}

func (m Match) PlayedAt() time.Time {
	return time.UnixMilli(m.Date).UTC()
}

func (m Match) ValidateBasic() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.PlayerOneID == 0 || m.PlayerTwoID == 0 {
		return fmt.Errorf("player ids are required")
	}
	if m.PlayerOneID == m.PlayerTwoID {
		return fmt.Errorf("player ids must differ")
	}
	if m.Date <= 0 {
		return fmt.Errorf("match date is required")
	}
	return nil
}

// ActiveMatch is the single in-progress match a session persists so it can
// be resumed after a restart.
type ActiveMatch struct {
	MatchID          string
	State            scoring.MatchState
	Rules            scoring.Rules
	Sets             []Set
	CurrentSetPoints []Point
	UpdatedAt        time.Time
}

func CloneActive(a ActiveMatch) ActiveMatch {
	copied := a
	copied.Sets = CloneSets(a.Sets)
	copied.CurrentSetPoints = append([]Point(nil), a.CurrentSetPoints...)
	return copied
}

// FromState builds the record for a finished match.
func FromState(id string, state scoring.MatchState, sets []Set, rules scoring.Rules, now time.Time) Match {
	return Match{
		ID:             id,
		PlayerOneID:    state.Player1.ID,
		PlayerTwoID:    state.Player2.ID,
		PlayerOneName:  state.Player1.Name,
		PlayerTwoName:  state.Player2.Name,
		PlayerOneScore: state.Player1SetsWon,
		PlayerTwoScore: state.Player2SetsWon,
		Date:           now.UnixMilli(),
		WinnerID:       scoring.DetermineWinner(state),
		Rules:          rules,
		Sets:           CloneSets(sets),
	}
}

func CloneSets(sets []Set) []Set {
	if sets == nil {
		return nil
	}
	out := make([]Set, len(sets))
	for i, s := range sets {
		out[i] = s
		out[i].Points = append([]Point(nil), s.Points...)
	}
	return out
}

func CloneMatch(m Match) Match {
	copied := m
	copied.Sets = CloneSets(m.Sets)
	return copied
}
