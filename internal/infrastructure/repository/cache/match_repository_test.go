package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
	matchrecordmock "github.com/riskibarqy/scorekeeper/internal/mocks/domain/matchrecord"
	basecache "github.com/riskibarqy/scorekeeper/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func TestMatchRepository_CachesReadsUntilSave(t *testing.T) {
	ctx := context.Background()
	next := matchrecordmock.NewRepository(t)
	repo := NewMatchRepository(next, basecache.NewStore(time.Minute))

	first := matchrecord.Match{ID: "m-1", PlayerOneID: 1, PlayerTwoID: 2, Date: 10, WinnerID: scoring.SomePlayer(1)}
	next.On("List", mock.Anything, 10).Return([]matchrecord.Match{first}, nil).Once()
	next.On("GetByID", mock.Anything, "m-1").Return(first, true, nil).Once()

	for i := 0; i < 3; i++ {
		items, err := repo.List(ctx, 10)
		if err != nil || len(items) != 1 {
			t.Fatalf("list: %v %+v", err, items)
		}
		if _, exists, err := repo.GetByID(ctx, "m-1"); err != nil || !exists {
			t.Fatalf("get: exists=%t err=%v", exists, err)
		}
	}

	second := first
	second.PlayerTwoScore = 1
	next.On("Save", mock.Anything, second).Return(nil).Once()
	next.On("List", mock.Anything, 10).Return([]matchrecord.Match{second}, nil).Once()
	next.On("GetByID", mock.Anything, "m-1").Return(second, true, nil).Once()

	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}
	items, _ := repo.List(ctx, 10)
	if items[0].PlayerTwoScore != 1 {
		t.Fatalf("expected list to be reloaded after save")
	}
	got, _, _ := repo.GetByID(ctx, "m-1")
	if got.PlayerTwoScore != 1 {
		t.Fatalf("expected item to be reloaded after save")
	}
}

func TestMatchRepository_CachesMisses(t *testing.T) {
	next := matchrecordmock.NewRepository(t)
	repo := NewMatchRepository(next, basecache.NewStore(time.Minute))
	next.On("GetByID", mock.Anything, "missing").Return(matchrecord.Match{}, false, nil).Once()

	for i := 0; i < 2; i++ {
		if _, exists, err := repo.GetByID(context.Background(), "missing"); err != nil || exists {
			t.Fatalf("expected cached miss, exists=%t err=%v", exists, err)
		}
	}
}
