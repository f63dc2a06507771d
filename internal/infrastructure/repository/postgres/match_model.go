package postgres

import (
	"database/sql"
	"time"
)

const (
	matchesTable     = "matches"
	matchSetsTable   = "match_sets"
	matchPointsTable = "match_points"
	activeMatchTable = "active_match"

	// activeMatchRowID is the only row active_match ever holds.
	activeMatchRowID = 1
)

type matchTableModel struct {
	ID             string        `db:"id"`
	PlayerOneID    int           `db:"player_one_id"`
	PlayerTwoID    int           `db:"player_two_id"`
	PlayerOneName  string        `db:"player_one_name"`
	PlayerTwoName  string        `db:"player_two_name"`
	PlayerOneScore int           `db:"player_one_score"`
	PlayerTwoScore int           `db:"player_two_score"`
	PlayedAt       int64         `db:"played_at"`
	WinnerID       sql.NullInt64 `db:"winner_id"`
	Rules          string        `db:"rules"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

type matchSetTableModel struct {
	MatchID        string `db:"match_id"`
	SetNumber      int    `db:"set_number"`
	PlayerOneScore int    `db:"player_one_score"`
	PlayerTwoScore int    `db:"player_two_score"`
	WinnerID       int    `db:"winner_id"`
}

type matchPointTableModel struct {
	MatchID        string `db:"match_id"`
	SetNumber      int    `db:"set_number"`
	Sequence       int    `db:"sequence"`
	ScorerID       int    `db:"scorer_id"`
	PlayerOneScore int    `db:"player_one_score"`
	PlayerTwoScore int    `db:"player_two_score"`
}

type activeMatchTableModel struct {
	ID               int       `db:"id"`
	MatchID          string    `db:"match_id"`
	State            string    `db:"state"`
	Rules            string    `db:"rules"`
	Sets             string    `db:"sets"`
	CurrentSetPoints string    `db:"current_set_points"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// JSONB documents. Field names are the stored format and must stay stable.

type rulesDocument struct {
	PointsToWinSet           int    `json:"points_to_win_set"`
	WinByTwo                 bool   `json:"win_by_two"`
	NumberOfSets             int    `json:"number_of_sets"`
	ServeRotationAfterPoints int    `json:"serve_rotation_after_points"`
	ServeChangeAfterDeuce    int    `json:"serve_change_after_deuce"`
	WinnerServesNextGame     bool   `json:"winner_serves_next_game"`
	NextServer               string `json:"next_server,omitempty"`
}

type playerDocument struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type stateDocument struct {
	Player1         playerDocument `json:"player1"`
	Player2         playerDocument `json:"player2"`
	ServingPlayerID *int           `json:"serving_player_id"`
	Player1SetsWon  int            `json:"player1_sets_won"`
	Player2SetsWon  int            `json:"player2_sets_won"`
	IsDeuce         bool           `json:"is_deuce"`
	IsFinished      bool           `json:"is_finished"`
}

type pointDocument struct {
	Sequence     int `json:"sequence"`
	ScorerID     int `json:"scorer_id"`
	Player1Score int `json:"player1_score"`
	Player2Score int `json:"player2_score"`
}

type setDocument struct {
	SetNumber    int             `json:"set_number"`
	Points       []pointDocument `json:"points"`
	Player1Score int             `json:"player1_score"`
	Player2Score int             `json:"player2_score"`
	WinnerID     int             `json:"winner_id"`
}
