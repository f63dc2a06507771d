package postgres

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
)

func encodeJSON(value any) (string, error) {
	encoded, err := sonic.MarshalString(value)
	if err != nil {
		return "", err
	}
	return encoded, nil
}

func decodeJSON(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	return sonic.UnmarshalString(raw, out)
}

func rulesToDocument(r scoring.Rules) rulesDocument {
	return rulesDocument{
		PointsToWinSet:           r.PointsToWinSet,
		WinByTwo:                 r.WinByTwo,
		NumberOfSets:             r.NumberOfSets,
		ServeRotationAfterPoints: r.ServeRotationAfterPoints,
		ServeChangeAfterDeuce:    r.ServeChangeAfterDeuce,
		WinnerServesNextGame:     r.WinnerServesNextGame,
		NextServer:               string(r.NextServer),
	}
}

func rulesFromDocument(d rulesDocument) scoring.Rules {
	return scoring.Rules{
		PointsToWinSet:           d.PointsToWinSet,
		WinByTwo:                 d.WinByTwo,
		NumberOfSets:             d.NumberOfSets,
		ServeRotationAfterPoints: d.ServeRotationAfterPoints,
		ServeChangeAfterDeuce:    d.ServeChangeAfterDeuce,
		WinnerServesNextGame:     d.WinnerServesNextGame,
		NextServer:               scoring.ServingRule(d.NextServer),
	}
}

func encodeRules(r scoring.Rules) (string, error) {
	encoded, err := encodeJSON(rulesToDocument(r))
	if err != nil {
		return "", fmt.Errorf("encode rules: %w", err)
	}
	return encoded, nil
}

func decodeRules(raw string) (scoring.Rules, error) {
	var doc rulesDocument
	if err := decodeJSON(raw, &doc); err != nil {
		return scoring.Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	return rulesFromDocument(doc), nil
}

func stateToDocument(s scoring.MatchState) stateDocument {
	return stateDocument{
		Player1:         playerDocument{ID: s.Player1.ID, Name: s.Player1.Name, Score: s.Player1.Score},
		Player2:         playerDocument{ID: s.Player2.ID, Name: s.Player2.Name, Score: s.Player2.Score},
		ServingPlayerID: s.ServingPlayerID.Ptr(),
		Player1SetsWon:  s.Player1SetsWon,
		Player2SetsWon:  s.Player2SetsWon,
		IsDeuce:         s.IsDeuce,
		IsFinished:      s.IsFinished,
	}
}

func stateFromDocument(d stateDocument) scoring.MatchState {
	return scoring.MatchState{
		Player1:         scoring.Player{ID: d.Player1.ID, Name: d.Player1.Name, Score: d.Player1.Score},
		Player2:         scoring.Player{ID: d.Player2.ID, Name: d.Player2.Name, Score: d.Player2.Score},
		ServingPlayerID: scoring.NullPlayerIDFromPtr(d.ServingPlayerID),
		Player1SetsWon:  d.Player1SetsWon,
		Player2SetsWon:  d.Player2SetsWon,
		IsDeuce:         d.IsDeuce,
		IsFinished:      d.IsFinished,
	}
}

func pointsToDocuments(points []matchrecord.Point) []pointDocument {
	out := make([]pointDocument, 0, len(points))
	for _, p := range points {
		out = append(out, pointDocument{
			Sequence:     p.Sequence,
			ScorerID:     p.ScorerID,
			Player1Score: p.Player1Score,
			Player2Score: p.Player2Score,
		})
	}
	return out
}

func pointsFromDocuments(docs []pointDocument) []matchrecord.Point {
	if len(docs) == 0 {
		return nil
	}
	out := make([]matchrecord.Point, 0, len(docs))
	for _, d := range docs {
		out = append(out, matchrecord.Point{
			Sequence:     d.Sequence,
			ScorerID:     d.ScorerID,
			Player1Score: d.Player1Score,
			Player2Score: d.Player2Score,
		})
	}
	return out
}

func setsToDocuments(sets []matchrecord.Set) []setDocument {
	out := make([]setDocument, 0, len(sets))
	for _, s := range sets {
		out = append(out, setDocument{
			SetNumber:    s.SetNumber,
			Points:       pointsToDocuments(s.Points),
			Player1Score: s.FinalScore.Player1Score,
			Player2Score: s.FinalScore.Player2Score,
			WinnerID:     s.WinnerID,
		})
	}
	return out
}

func setsFromDocuments(docs []setDocument) []matchrecord.Set {
	if len(docs) == 0 {
		return nil
	}
	out := make([]matchrecord.Set, 0, len(docs))
	for _, d := range docs {
		out = append(out, matchrecord.Set{
			SetNumber:  d.SetNumber,
			Points:     pointsFromDocuments(d.Points),
			FinalScore: matchrecord.SetScore{Player1Score: d.Player1Score, Player2Score: d.Player2Score},
			WinnerID:   d.WinnerID,
		})
	}
	return out
}
