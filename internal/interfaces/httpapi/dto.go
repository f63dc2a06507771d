package httpapi

import (
	"time"

	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
	"github.com/riskibarqy/scorekeeper/internal/usecase"
)

type startMatchRequest struct {
	Player1ID            int           `json:"player1_id" validate:"required,gt=0"`
	Player2ID            int           `json:"player2_id" validate:"required,gt=0,nefield=Player1ID"`
	Player1Name          string        `json:"player1_name" validate:"required,max=100"`
	Player2Name          string        `json:"player2_name" validate:"required,max=100"`
	Rules                *rulesRequest `json:"rules"`
	ContinueFromPrevious bool          `json:"continue_from_previous"`
}

// rulesRequest overrides individual default rules. Omitted fields keep the
// server defaults.
type rulesRequest struct {
	PointsToWinSet           *int    `json:"points_to_win_set" validate:"omitempty,gte=1"`
	WinByTwo                 *bool   `json:"win_by_two"`
	NumberOfSets             *int    `json:"number_of_sets" validate:"omitempty,gte=1"`
	ServeRotationAfterPoints *int    `json:"serve_rotation_after_points" validate:"omitempty,gte=1"`
	ServeChangeAfterDeuce    *int    `json:"serve_change_after_deuce" validate:"omitempty,gte=0"`
	WinnerServesNextGame     *bool   `json:"winner_serves_next_game"`
	NextServer               *string `json:"next_server"`
}

type playerActionRequest struct {
	PlayerID int `json:"player_id" validate:"required,gt=0"`
}

type playerDTO struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type matchStateDTO struct {
	Player1         playerDTO `json:"player1"`
	Player2         playerDTO `json:"player2"`
	ServingPlayerID *int      `json:"serving_player_id"`
	Player1SetsWon  int       `json:"player1_sets_won"`
	Player2SetsWon  int       `json:"player2_sets_won"`
	IsDeuce         bool      `json:"is_deuce"`
	IsFinished      bool      `json:"is_finished"`
	WinnerID        *int      `json:"winner_id"`
}

type rulesDTO struct {
	PointsToWinSet           int    `json:"points_to_win_set"`
	WinByTwo                 bool   `json:"win_by_two"`
	NumberOfSets             int    `json:"number_of_sets"`
	ServeRotationAfterPoints int    `json:"serve_rotation_after_points"`
	ServeChangeAfterDeuce    int    `json:"serve_change_after_deuce"`
	WinnerServesNextGame     bool   `json:"winner_serves_next_game"`
	NextServer               string `json:"next_server"`
}

type pointDTO struct {
	Sequence     int `json:"sequence"`
	ScorerID     int `json:"scorer_id"`
	Player1Score int `json:"player1_score"`
	Player2Score int `json:"player2_score"`
}

type setDTO struct {
	SetNumber    int        `json:"set_number"`
	Player1Score int        `json:"player1_score"`
	Player2Score int        `json:"player2_score"`
	WinnerID     int        `json:"winner_id"`
	Points       []pointDTO `json:"points"`
}

type matchSessionDTO struct {
	MatchID          string        `json:"match_id"`
	State            matchStateDTO `json:"state"`
	Rules            rulesDTO      `json:"rules"`
	CanUndo          bool          `json:"can_undo"`
	Sets             []setDTO      `json:"sets"`
	CurrentSetPoints []pointDTO    `json:"current_set_points"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type matchRecordDTO struct {
	ID             string    `json:"id"`
	PlayerOneID    int       `json:"player_one_id"`
	PlayerTwoID    int       `json:"player_two_id"`
	PlayerOneName  string    `json:"player_one_name"`
	PlayerTwoName  string    `json:"player_two_name"`
	PlayerOneScore int       `json:"player_one_score"`
	PlayerTwoScore int       `json:"player_two_score"`
	Date           int64     `json:"date"`
	PlayedAt       time.Time `json:"played_at"`
	WinnerID       *int      `json:"winner_id"`
	Rules          rulesDTO  `json:"rules"`
	Sets           []setDTO  `json:"sets,omitempty"`
}

func (r *rulesRequest) apply(base scoring.Rules) (scoring.Rules, error) {
	if r == nil {
		return base, nil
	}
	if r.PointsToWinSet != nil {
		base.PointsToWinSet = *r.PointsToWinSet
	}
	if r.WinByTwo != nil {
		base.WinByTwo = *r.WinByTwo
	}
	if r.NumberOfSets != nil {
		base.NumberOfSets = *r.NumberOfSets
	}
	if r.ServeRotationAfterPoints != nil {
		base.ServeRotationAfterPoints = *r.ServeRotationAfterPoints
	}
	if r.ServeChangeAfterDeuce != nil {
		base.ServeChangeAfterDeuce = *r.ServeChangeAfterDeuce
	}
	if r.WinnerServesNextGame != nil {
		base.WinnerServesNextGame = *r.WinnerServesNextGame
	}
	if r.NextServer != nil {
		rule, err := scoring.ParseServingRule(*r.NextServer)
		if err != nil {
			return scoring.Rules{}, err
		}
		base.NextServer = rule
	}
	return base, nil
}

func stateToDTO(s scoring.MatchState) matchStateDTO {
	dto := matchStateDTO{
		Player1:         playerDTO{ID: s.Player1.ID, Name: s.Player1.Name, Score: s.Player1.Score},
		Player2:         playerDTO{ID: s.Player2.ID, Name: s.Player2.Name, Score: s.Player2.Score},
		ServingPlayerID: s.ServingPlayerID.Ptr(),
		Player1SetsWon:  s.Player1SetsWon,
		Player2SetsWon:  s.Player2SetsWon,
		IsDeuce:         s.IsDeuce,
		IsFinished:      s.IsFinished,
	}
	if s.IsFinished {
		dto.WinnerID = scoring.DetermineWinner(s).Ptr()
	}
	return dto
}

func rulesToDTO(r scoring.Rules) rulesDTO {
	return rulesDTO{
		PointsToWinSet:           r.PointsToWinSet,
		WinByTwo:                 r.WinByTwo,
		NumberOfSets:             r.NumberOfSets,
		ServeRotationAfterPoints: r.ServeRotationAfterPoints,
		ServeChangeAfterDeuce:    r.ServeChangeAfterDeuce,
		WinnerServesNextGame:     r.WinnerServesNextGame,
		NextServer:               string(r.ServingRule()),
	}
}

func pointsToDTO(points []matchrecord.Point) []pointDTO {
	out := make([]pointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, pointDTO{
			Sequence:     p.Sequence,
			ScorerID:     p.ScorerID,
			Player1Score: p.Player1Score,
			Player2Score: p.Player2Score,
		})
	}
	return out
}

func setsToDTO(sets []matchrecord.Set) []setDTO {
	out := make([]setDTO, 0, len(sets))
	for _, s := range sets {
		out = append(out, setDTO{
			SetNumber:    s.SetNumber,
			Player1Score: s.FinalScore.Player1Score,
			Player2Score: s.FinalScore.Player2Score,
			WinnerID:     s.WinnerID,
			Points:       pointsToDTO(s.Points),
		})
	}
	return out
}

func snapshotToDTO(s usecase.MatchSnapshot) matchSessionDTO {
	return matchSessionDTO{
		MatchID:          s.MatchID,
		State:            stateToDTO(s.State),
		Rules:            rulesToDTO(s.Rules),
		CanUndo:          s.CanUndo,
		Sets:             setsToDTO(s.Sets),
		CurrentSetPoints: pointsToDTO(s.CurrentSetPoints),
		UpdatedAt:        s.UpdatedAt,
	}
}

func matchRecordToDTO(m matchrecord.Match, withSets bool) matchRecordDTO {
	dto := matchRecordDTO{
		ID:             m.ID,
		PlayerOneID:    m.PlayerOneID,
		PlayerTwoID:    m.PlayerTwoID,
		PlayerOneName:  m.PlayerOneName,
		PlayerTwoName:  m.PlayerTwoName,
		PlayerOneScore: m.PlayerOneScore,
		PlayerTwoScore: m.PlayerTwoScore,
		Date:           m.Date,
		PlayedAt:       m.PlayedAt(),
		WinnerID:       m.WinnerID.Ptr(),
		Rules:          rulesToDTO(m.Rules),
	}
	if withSets {
		dto.Sets = setsToDTO(m.Sets)
	}
	return dto
}
