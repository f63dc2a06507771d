package scoring

import (
	"errors"
	"testing"
)

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Rules)
		targetErr error
	}{
		{name: "defaults are valid", mutate: func(*Rules) {}},
		{name: "zero points to win", mutate: func(r *Rules) { r.PointsToWinSet = 0 }, targetErr: ErrInvalidPointsToWinSet},
		{name: "zero sets", mutate: func(r *Rules) { r.NumberOfSets = 0 }, targetErr: ErrInvalidNumberOfSets},
		{name: "zero rotation", mutate: func(r *Rules) { r.ServeRotationAfterPoints = 0 }, targetErr: ErrInvalidServeRotation},
		{name: "negative deuce interval", mutate: func(r *Rules) { r.ServeChangeAfterDeuce = -1 }, targetErr: ErrInvalidDeuceServeChange},
		{name: "deuce override disabled", mutate: func(r *Rules) { r.ServeChangeAfterDeuce = 0 }},
		{name: "unknown serving rule", mutate: func(r *Rules) { r.NextServer = ServingRule("coin_toss") }, targetErr: ErrUnknownServingRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			tt.mutate(&rules)

			err := rules.Validate()
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestRulesSetsNeeded(t *testing.T) {
	for numberOfSets, want := range map[int]int{1: 1, 3: 2, 4: 3, 5: 3, 7: 4} {
		rules := DefaultRules()
		rules.NumberOfSets = numberOfSets
		if got := rules.SetsNeeded(); got != want {
			t.Fatalf("sets=%d: expected %d needed, got %d", numberOfSets, want, got)
		}
	}
}

func TestParseServingRule(t *testing.T) {
	rule, err := ParseServingRule(" Loser ")
	if err != nil || rule != ServingRuleLoser {
		t.Fatalf("expected loser rule, got %q err=%v", rule, err)
	}

	rule, err = ParseServingRule("")
	if err != nil || rule != ServingRuleDefault {
		t.Fatalf("expected default rule, got %q err=%v", rule, err)
	}

	if _, err := ParseServingRule("coin_toss"); !errors.Is(err, ErrUnknownServingRule) {
		t.Fatalf("expected ErrUnknownServingRule, got %v", err)
	}
}

func TestNullPlayerIDSentinelRoundTrip(t *testing.T) {
	if got := NullPlayerIDFromInt(NoPlayer().Int()); got.Valid {
		t.Fatalf("expected 0 to map back to no player, got %+v", got)
	}
	if got := NullPlayerIDFromInt(SomePlayer(2).Int()); got != SomePlayer(2) {
		t.Fatalf("expected player 2, got %+v", got)
	}
	if NoPlayer().Ptr() != nil {
		t.Fatalf("expected nil pointer for no player")
	}
	if got := NullPlayerIDFromPtr(SomePlayer(1).Ptr()); got != SomePlayer(1) {
		t.Fatalf("expected player 1, got %+v", got)
	}
}
