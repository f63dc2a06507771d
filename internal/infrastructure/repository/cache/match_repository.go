package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	basecache "github.com/riskibarqy/scorekeeper/internal/platform/cache"
)

const (
	matchListPrefix = "match:list:"
	matchIDPrefix   = "match:id:"
)

// MatchRepository is a read-through cache over a match repository.
type MatchRepository struct {
	next  matchrecord.Repository
	cache *basecache.Store
}

func NewMatchRepository(next matchrecord.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) Save(ctx context.Context, match matchrecord.Match) error {
	if err := r.next.Save(ctx, match); err != nil {
		return err
	}
	r.cache.Delete(ctx, matchIDPrefix+match.ID)
	r.cache.DeletePrefix(ctx, matchListPrefix)
	return nil
}

func (r *MatchRepository) List(ctx context.Context, limit int) ([]matchrecord.Match, error) {
	key := matchListPrefix + strconv.Itoa(limit)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		return cloneMatches(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]matchrecord.Match)
	return cloneMatches(items), nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (matchrecord.Match, bool, error) {
	key := matchIDPrefix + matchID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return cachedMatchByID{value: matchrecord.CloneMatch(item), exists: exists}, nil
	})
	if err != nil {
		return matchrecord.Match{}, false, err
	}

	cached, _ := v.(cachedMatchByID)
	return matchrecord.CloneMatch(cached.value), cached.exists, nil
}

type cachedMatchByID struct {
	value  matchrecord.Match
	exists bool
}

func cloneMatches(items []matchrecord.Match) []matchrecord.Match {
	out := make([]matchrecord.Match, len(items))
	for i, item := range items {
		out[i] = matchrecord.CloneMatch(item)
	}
	return out
}
