package gamestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_CopiesInAndOut(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	g := waitingGame("g1", "alice", time.Now())
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	g.WhiteName = "changed after create"

	got, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.WhiteName != "alice" {
		t.Fatalf("store shares memory with caller: %q", got.WhiteName)
	}
	got.MovesUCI = append(got.MovesUCI, "e2e4")
	again, _ := s.Load(ctx, "g1")
	if len(again.MovesUCI) != 0 {
		t.Fatalf("loaded copy leaked back into the store")
	}
	if err := s.Create(ctx, g); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestMemoryStore_ConcurrentUpdatesSerialize(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Create(ctx, waitingGame("g1", "alice", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, "g1", func(g *Game) error {
				g.MovesUCI = append(g.MovesUCI, "x")
				return nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.Load(ctx, "g1")
	if len(got.MovesUCI) != writers {
		t.Fatalf("lost updates: %d of %d", len(got.MovesUCI), writers)
	}
}

func TestMemoryStore_FailedUpdateAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Create(ctx, waitingGame("g1", "alice", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	boom := errors.New("boom")
	if _, err := s.Update(ctx, "g1", func(g *Game) error { g.BlackID = "bob"; return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if got, _ := s.Load(ctx, "g1"); got.BlackID != "" {
		t.Fatalf("failed update was committed")
	}

	if err := s.Delete(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Update(ctx, "g1", func(*Game) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update after delete: %v", err)
	}
}

func TestMemoryStore_Listing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()
	_ = s.Create(ctx, waitingGame("second", "bob", base.Add(time.Minute)))
	_ = s.Create(ctx, waitingGame("first", "alice", base))
	_, _ = s.Update(ctx, "second", func(g *Game) error {
		g.BlackID = "alice"
		g.UpdatedAt = base.Add(2 * time.Minute)
		return nil
	})

	waiting, _ := s.ListWaiting(ctx)
	if len(waiting) != 2 || waiting[0].ID != "first" {
		t.Fatalf("waiting order wrong: %+v", waiting)
	}
	mine, _ := s.GamesByUser(ctx, "alice")
	if len(mine) != 2 || mine[0].ID != "second" {
		t.Fatalf("GamesByUser should put the latest update first: %+v", mine)
	}
	if none, _ := s.GamesByUser(ctx, " "); len(none) != 0 {
		t.Fatalf("blank user should match nothing")
	}
}
