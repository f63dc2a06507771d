package scoring

// Player holds one side of a match. Score only changes through the engine.
type Player struct {
	ID    int
	Name  string
	Score int
}

// NullPlayerID is a player id that may be absent, in the style of sql.NullInt64.
type NullPlayerID struct {
	ID    int
	Valid bool
}

func SomePlayer(id int) NullPlayerID {
	return NullPlayerID{ID: id, Valid: true}
}

func NoPlayer() NullPlayerID {
	return NullPlayerID{}
}

// Int returns the id or 0 when absent. Player ids are never 0, so storage
// formats without a null type can round-trip through NullPlayerIDFromInt.
func (n NullPlayerID) Int() int {
	if !n.Valid {
		return 0
	}
	return n.ID
}

func NullPlayerIDFromInt(v int) NullPlayerID {
	if v == 0 {
		return NoPlayer()
	}
	return SomePlayer(v)
}

// Ptr returns nil when absent, for JSON encoding.
func (n NullPlayerID) Ptr() *int {
	if !n.Valid {
		return nil
	}
	id := n.ID
	return &id
}

func NullPlayerIDFromPtr(v *int) NullPlayerID {
	if v == nil {
		return NoPlayer()
	}
	return SomePlayer(*v)
}

// MatchState is an immutable snapshot of a match. It is comparable, so two
// snapshots are equal exactly when every field is equal.
type MatchState struct {
	Player1         Player
	Player2         Player
	ServingPlayerID NullPlayerID
	Player1SetsWon  int
	Player2SetsWon  int
	IsDeuce         bool
	IsFinished      bool
}

func (s MatchState) HasPlayer(playerID int) bool {
	return playerID == s.Player1.ID || playerID == s.Player2.ID
}

// Opponent returns the id of the other player, or 0 when playerID is unknown.
func (s MatchState) Opponent(playerID int) int {
	switch playerID {
	case s.Player1.ID:
		return s.Player2.ID
	case s.Player2.ID:
		return s.Player1.ID
	default:
		return 0
	}
}

func (s MatchState) SetsWonBy(playerID int) int {
	switch playerID {
	case s.Player1.ID:
		return s.Player1SetsWon
	case s.Player2.ID:
		return s.Player2SetsWon
	default:
		return 0
	}
}

// SetNumber is the 1-based number of the set currently being played.
func (s MatchState) SetNumber() int {
	return s.Player1SetsWon + s.Player2SetsWon + 1
}

// PointOutcome describes what a single ScorePoint call did.
type PointOutcome struct {
	Applied       bool
	ScorerID      int
	Player1Score  int
	Player2Score  int
	SetNumber     int
	SetWon        bool
	SetWinnerID   int
	MatchFinished bool
}
