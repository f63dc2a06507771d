package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]matchrecord.Match
}

func NewMatchRepository(matches ...matchrecord.Match) *MatchRepository {
	items := make(map[string]matchrecord.Match, len(matches))
	for _, m := range matches {
		items[m.ID] = matchrecord.CloneMatch(m)
	}
	return &MatchRepository{items: items}
}

func (r *MatchRepository) Save(_ context.Context, match matchrecord.Match) error {
	if err := match.ValidateBasic(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[match.ID] = matchrecord.CloneMatch(match)
	return nil
}

// List returns matches newest first; ties break on id descending.
func (r *MatchRepository) List(_ context.Context, limit int) ([]matchrecord.Match, error) {
	r.mu.RLock()
	out := make([]matchrecord.Match, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, matchrecord.CloneMatch(m))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (matchrecord.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[matchID]
	if !ok {
		return matchrecord.Match{}, false, nil
	}
	return matchrecord.CloneMatch(m), true, nil
}
