package scoring

// The engine functions are total: a finished match or an unknown player id
// returns the input state unchanged instead of failing. Rules are assumed to
// have passed Rules.Validate.

// IncrementScore awards one point to playerID and applies set, deuce, serve
// and match rules.
func IncrementScore(state MatchState, rules Rules, playerID int) MatchState {
	next, _ := ScorePoint(state, rules, playerID)
	return next
}

// ScorePoint is IncrementScore that also reports what happened.
func ScorePoint(state MatchState, rules Rules, playerID int) (MatchState, PointOutcome) {
	if state.IsFinished || !state.HasPlayer(playerID) {
		return state, PointOutcome{}
	}

	next := state
	if playerID == next.Player1.ID {
		next.Player1.Score++
	} else {
		next.Player2.Score++
	}

	p1, p2 := next.Player1.Score, next.Player2.Score
	outcome := PointOutcome{
		Applied:      true,
		ScorerID:     playerID,
		Player1Score: p1,
		Player2Score: p2,
		SetNumber:    state.SetNumber(),
	}

	// Deuce is judged on the scores before a set win resets them.
	next.IsDeuce = inDeuceZone(rules, p1, p2)

	setWinner := 0
	switch {
	case wonSet(rules, p1, p2):
		setWinner = next.Player1.ID
		next.Player1SetsWon++
	case wonSet(rules, p2, p1):
		setWinner = next.Player2.ID
		next.Player2SetsWon++
	}

	if setWinner != 0 {
		next.Player1.Score = 0
		next.Player2.Score = 0
		next.ServingPlayerID = serverAfterSet(state, rules, setWinner)
		outcome.SetWon = true
		outcome.SetWinnerID = setWinner
	} else {
		next.ServingPlayerID = serverForNextPoint(state, rules, p1, p2)
	}

	needed := rules.SetsNeeded()
	next.IsFinished = next.Player1SetsWon >= needed || next.Player2SetsWon >= needed
	outcome.MatchFinished = next.IsFinished

	return next, outcome
}

// DecrementScore removes one point from playerID, never going below zero.
// It is a manual correction: sets, serve and deuce are left as they are.
func DecrementScore(state MatchState, playerID int) MatchState {
	if state.IsFinished || !state.HasPlayer(playerID) {
		return state
	}

	next := state
	if playerID == next.Player1.ID {
		next.Player1.Score = max(next.Player1.Score-1, 0)
	} else {
		next.Player2.Score = max(next.Player2.Score-1, 0)
	}
	return next
}

// SwitchServe hands the serve to the other player regardless of rotation.
func SwitchServe(state MatchState) MatchState {
	if state.IsFinished {
		return state
	}

	next := state
	next.ServingPlayerID = otherServer(state)
	return next
}

// ResetGame starts a fresh match. lastGameWinner is consulted only when the
// serving rule depends on the previous result.
func ResetGame(player1ID, player2ID int, player1Name, player2Name string, rules Rules, lastGameWinner NullPlayerID) MatchState {
	server := SomePlayer(player1ID)
	if lastGameWinner.Valid {
		switch rules.ServingRule() {
		case ServingRuleWinner:
			if lastGameWinner.ID == player1ID || lastGameWinner.ID == player2ID {
				server = SomePlayer(lastGameWinner.ID)
			}
		case ServingRuleLoser:
			if lastGameWinner.ID == player1ID {
				server = SomePlayer(player2ID)
			} else if lastGameWinner.ID == player2ID {
				server = SomePlayer(player1ID)
			}
		}
	}

	return MatchState{
		Player1:         Player{ID: player1ID, Name: player1Name},
		Player2:         Player{ID: player2ID, Name: player2Name},
		ServingPlayerID: server,
	}
}

// DetermineWinner returns the player with strictly more sets, or no player on a tie.
func DetermineWinner(state MatchState) NullPlayerID {
	switch {
	case state.Player1SetsWon > state.Player2SetsWon:
		return SomePlayer(state.Player1.ID)
	case state.Player2SetsWon > state.Player1SetsWon:
		return SomePlayer(state.Player2.ID)
	default:
		return NoPlayer()
	}
}

func wonSet(rules Rules, score, opponent int) bool {
	if score < rules.PointsToWinSet {
		return false
	}
	return !rules.WinByTwo || score-opponent >= 2
}

func inDeuceZone(rules Rules, p1, p2 int) bool {
	threshold := rules.PointsToWinSet - 1
	return rules.WinByTwo && p1 >= threshold && p2 >= threshold
}

// serverForNextPoint keeps the server for blocks of N points. With played
// points so far, the next point is played+1; it opens a new block, and the
// serve flips, when (next-N-1) is a multiple of N.
func serverForNextPoint(prev MatchState, rules Rules, p1, p2 int) NullPlayerID {
	interval := rules.ServeRotationAfterPoints
	if inDeuceZone(rules, p1, p2) && rules.ServeChangeAfterDeuce > 0 {
		interval = rules.ServeChangeAfterDeuce
	}
	if interval < 1 {
		interval = 1
	}

	nextPoint := p1 + p2 + 1
	if nextPoint > interval && (nextPoint-interval-1)%interval == 0 {
		return otherServer(prev)
	}
	return prev.ServingPlayerID
}

func serverAfterSet(prev MatchState, rules Rules, setWinner int) NullPlayerID {
	switch rules.ServingRule() {
	case ServingRuleWinner:
		return SomePlayer(setWinner)
	case ServingRuleLoser:
		return SomePlayer(prev.Opponent(setWinner))
	case ServingRulePlayerOneAlways:
		return SomePlayer(prev.Player1.ID)
	default:
		return otherServer(prev)
	}
}

// otherServer flips the serve. With no server yet, player 1 takes it.
func otherServer(state MatchState) NullPlayerID {
	if state.ServingPlayerID.Valid && state.ServingPlayerID.ID == state.Player1.ID {
		return SomePlayer(state.Player2.ID)
	}
	return SomePlayer(state.Player1.ID)
}
