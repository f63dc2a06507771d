package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
)

type ActiveStateRepository struct {
	mu     sync.RWMutex
	active *matchrecord.ActiveMatch
}

func NewActiveStateRepository() *ActiveStateRepository {
	return &ActiveStateRepository{}
}

func (r *ActiveStateRepository) SaveActive(_ context.Context, active matchrecord.ActiveMatch) error {
	copied := matchrecord.CloneActive(active)

	r.mu.Lock()
	r.active = &copied
	r.mu.Unlock()
	return nil
}

func (r *ActiveStateRepository) LoadActive(_ context.Context) (matchrecord.ActiveMatch, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == nil {
		return matchrecord.ActiveMatch{}, false, nil
	}
	return matchrecord.CloneActive(*r.active), true, nil
}

func (r *ActiveStateRepository) ClearActive(_ context.Context) error {
	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
	return nil
}
