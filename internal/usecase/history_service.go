package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type HistoryService struct {
	matchRepo matchrecord.Repository
}

func NewHistoryService(matchRepo matchrecord.Repository) *HistoryService {
	return &HistoryService{matchRepo: matchRepo}
}

// ListMatches returns finished matches, newest first. A non-positive limit
// means DefaultHistoryLimit.
func (s *HistoryService) ListMatches(ctx context.Context, limit int) ([]matchrecord.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.ListMatches")
	defer span.End()

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be <= %d", ErrInvalidInput, MaxHistoryLimit)
	}

	matches, err := s.matchRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

func (s *HistoryService) GetMatch(ctx context.Context, matchID string) (matchrecord.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return matchrecord.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	match, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return matchrecord.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return matchrecord.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return match, nil
}
