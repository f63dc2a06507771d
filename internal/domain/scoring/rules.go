package scoring

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPointsToWinSet   = errors.New("points to win a set must be at least 1")
	ErrInvalidNumberOfSets     = errors.New("number of sets must be at least 1")
	ErrInvalidServeRotation    = errors.New("serve rotation interval must be at least 1")
	ErrInvalidDeuceServeChange = errors.New("deuce serve change interval must not be negative")
	ErrUnknownServingRule      = errors.New("unknown serving rule")
)

// ServingRule decides who serves first in the next set or match.
type ServingRule string

const (
	// ServingRuleDefault derives the rule from Rules.WinnerServesNextGame.
	ServingRuleDefault         ServingRule = ""
	ServingRulePlayerOneAlways ServingRule = "player_one_always"
	ServingRuleWinner          ServingRule = "winner"
	ServingRuleLoser           ServingRule = "loser"
	ServingRuleAlternate       ServingRule = "alternate"
)

var AllServingRules = map[ServingRule]struct{}{
	ServingRulePlayerOneAlways: {},
	ServingRuleWinner:          {},
	ServingRuleLoser:           {},
	ServingRuleAlternate:       {},
}

func ParseServingRule(raw string) (ServingRule, error) {
	rule := ServingRule(strings.ToLower(strings.TrimSpace(raw)))
	if rule == ServingRuleDefault {
		return rule, nil
	}
	if _, ok := AllServingRules[rule]; !ok {
		return ServingRuleDefault, fmt.Errorf("%w: %q", ErrUnknownServingRule, raw)
	}
	return rule, nil
}

// Rules governs a whole match and is never changed while the match runs.
type Rules struct {
	PointsToWinSet           int
	WinByTwo                 bool
	NumberOfSets             int
	ServeRotationAfterPoints int
	ServeChangeAfterDeuce    int
	WinnerServesNextGame     bool
	NextServer               ServingRule
}

func DefaultRules() Rules {
	return Rules{
		PointsToWinSet:           11,
		WinByTwo:                 true,
		NumberOfSets:             5,
		ServeRotationAfterPoints: 2,
		ServeChangeAfterDeuce:    1,
		WinnerServesNextGame:     true,
	}
}

func (r Rules) Validate() error {
	if r.PointsToWinSet < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPointsToWinSet, r.PointsToWinSet)
	}
	if r.NumberOfSets < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidNumberOfSets, r.NumberOfSets)
	}
	if r.ServeRotationAfterPoints < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidServeRotation, r.ServeRotationAfterPoints)
	}
	if r.ServeChangeAfterDeuce < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDeuceServeChange, r.ServeChangeAfterDeuce)
	}
	if r.NextServer != ServingRuleDefault {
		if _, ok := AllServingRules[r.NextServer]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownServingRule, r.NextServer)
		}
	}
	return nil
}

// SetsNeeded is the number of sets that wins the match.
func (r Rules) SetsNeeded() int {
	return r.NumberOfSets/2 + 1
}

// ServingRule resolves the effective rule. An explicit NextServer wins;
// otherwise WinnerServesNextGame picks between winner and alternate.
func (r Rules) ServingRule() ServingRule {
	if r.NextServer != ServingRuleDefault {
		return r.NextServer
	}
	if r.WinnerServesNextGame {
		return ServingRuleWinner
	}
	return ServingRuleAlternate
}
