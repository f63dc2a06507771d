package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/scorekeeper/internal/domain/matchrecord"
	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
	"github.com/riskibarqy/scorekeeper/internal/infrastructure/repository/memory"
	matchrecordmock "github.com/riskibarqy/scorekeeper/internal/mocks/domain/matchrecord"
	"github.com/stretchr/testify/mock"
)

type saveCounter struct {
	mu     sync.Mutex
	ok     int
	failed int
}

func (c *saveCounter) RecordSaved(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failed++
		return
	}
	c.ok++
}

func finishedMatch(id string) matchrecord.Match {
	return matchrecord.Match{
		ID:             id,
		PlayerOneID:    1,
		PlayerTwoID:    2,
		PlayerOneName:  "Ana",
		PlayerTwoName:  "Ben",
		PlayerOneScore: 3,
		Date:           time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
		WinnerID:       scoring.SomePlayer(1),
		Rules:          scoring.DefaultRules(),
	}
}

func TestAsync_SavesAndDrainsOnClose(t *testing.T) {
	repo := memory.NewMatchRepository()
	counter := &saveCounter{}
	rec, err := NewAsync(repo, Config{Workers: 2, SaveTimeout: time.Second}, counter, nil)
	if err != nil {
		t.Fatalf("new async: %v", err)
	}

	for _, id := range []string{"a", "b", "c"} {
		rec.RecordMatch(t.Context(), finishedMatch(id))
	}
	if err := rec.Close(t.Context()); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, _ := repo.List(t.Context(), 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 saved matches, got %d", len(got))
	}
	if counter.ok != 3 {
		t.Fatalf("expected 3 successful saves, got %d", counter.ok)
	}
}

func TestAsync_SaveOutlivesCanceledCaller(t *testing.T) {
	repo := memory.NewMatchRepository()
	rec, err := NewAsync(repo, Config{Workers: 1}, nil, nil)
	if err != nil {
		t.Fatalf("new async: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.RecordMatch(ctx, finishedMatch("a"))
	if err := rec.Close(t.Context()); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, exists, _ := repo.GetByID(t.Context(), "a"); !exists {
		t.Fatalf("expected match to be saved despite canceled caller")
	}
}

func TestAsync_LogsFailedSave(t *testing.T) {
	repo := matchrecordmock.NewRepository(t)
	repo.On("Save", mock.Anything, mock.AnythingOfType("matchrecord.Match")).Return(errors.New("db down")).Once()
	counter := &saveCounter{}

	rec, err := NewAsync(repo, Config{Workers: 1}, counter, nil)
	if err != nil {
		t.Fatalf("new async: %v", err)
	}
	rec.RecordMatch(t.Context(), finishedMatch("a"))
	if err := rec.Close(t.Context()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if counter.failed != 1 {
		t.Fatalf("expected one failed save, got %d", counter.failed)
	}
}

func TestAsync_DropsAfterClose(t *testing.T) {
	repo := matchrecordmock.NewRepository(t)
	rec, err := NewAsync(repo, Config{Workers: 1}, nil, nil)
	if err != nil {
		t.Fatalf("new async: %v", err)
	}
	if err := rec.Close(t.Context()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rec.Close(t.Context()); err != nil {
		t.Fatalf("second close: %v", err)
	}

	rec.RecordMatch(t.Context(), finishedMatch("late"))
}

func TestAsync_RecordRacingClose(t *testing.T) {
	for i := 0; i < 50; i++ {
		repo := memory.NewMatchRepository()
		rec, err := NewAsync(repo, Config{Workers: 2, SaveTimeout: time.Second}, nil, nil)
		if err != nil {
			t.Fatalf("new async: %v", err)
		}

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec.RecordMatch(t.Context(), finishedMatch("m"))
			}()
		}
		if err := rec.Close(t.Context()); err != nil {
			t.Fatalf("close: %v", err)
		}
		wg.Wait()
	}
}

func TestNewAsync_RequiresRepository(t *testing.T) {
	if _, err := NewAsync(nil, Config{}, nil, nil); err == nil {
		t.Fatalf("expected error without repository")
	}
}
