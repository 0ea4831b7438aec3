package gamestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/park285/cheese-chess/internal/chess"
)

// MemoryStore is an in-process Store for development and tests. Every game has its own lock so
// updates to one game never wait on another; callers only ever see copies.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*memEntry
}

type memEntry struct {
	mu   sync.Mutex
	game *Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*memEntry)}
}

func (s *MemoryStore) Create(_ context.Context, g *Game) error {
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return errors.New("game id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; ok {
		return ErrExists
	}
	s.games[g.ID] = &memEntry{game: g.Clone()}
	return nil
}

func (s *MemoryStore) entry(id string) (*memEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.games[strings.TrimSpace(id)]
	return e, ok
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Game, error) {
	e, ok := s.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game == nil {
		return nil, ErrNotFound
	}
	return e.game.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(g *Game) error) (*Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := s.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game == nil {
		// deleted while we waited for the lock
		return nil, ErrNotFound
	}
	work := e.game.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	e.game = work
	return work.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	e.game = nil
	e.mu.Unlock()
	return nil
}

func (s *MemoryStore) snapshot() []*Game {
	s.mu.RLock()
	entries := make([]*memEntry, 0, len(s.games))
	for _, e := range s.games {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*Game, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.game != nil {
			out = append(out, e.game.Clone())
		}
		e.mu.Unlock()
	}
	return out
}

func (s *MemoryStore) GamesByUser(_ context.Context, userID string) ([]*Game, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	var list []*Game
	for _, g := range s.snapshot() {
		if _, ok := g.ColorOf(userID); ok {
			list = append(list, g)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

func (s *MemoryStore) ListWaiting(_ context.Context) ([]*Game, error) {
	var list []*Game
	for _, g := range s.snapshot() {
		if g.State.Status == chess.StatusWaiting {
			list = append(list, g)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}
