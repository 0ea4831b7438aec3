package gamestore

import (
	"context"
	"sort"
	"sync"

	"github.com/park285/cheese-chess/internal/domain"
)

// MemoryArchive is the development-only Archive used when no database is configured.
type MemoryArchive struct {
	mu     sync.RWMutex
	byID   map[string]*domain.ChessGame
	byUser map[string][]string
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{byID: make(map[string]*domain.ChessGame), byUser: make(map[string][]string)}
}

func copyRecord(rec *domain.ChessGame) *domain.ChessGame {
	c := *rec
	c.MovesUCI = append([]string(nil), rec.MovesUCI...)
	c.MovesSAN = append([]string(nil), rec.MovesSAN...)
	return &c
}

func (a *MemoryArchive) SaveResult(_ context.Context, rec *domain.ChessGame) error {
	if rec == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, seen := a.byID[rec.GameID]; !seen {
		for _, uid := range []string{rec.WhiteID, rec.BlackID} {
			if uid != "" {
				a.byUser[uid] = append(a.byUser[uid], rec.GameID)
			}
		}
	}
	a.byID[rec.GameID] = copyRecord(rec)
	return nil
}

func (a *MemoryArchive) GetResult(_ context.Context, gameID string) (*domain.ChessGame, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.byID[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (a *MemoryArchive) RecentByUser(_ context.Context, userID string, limit int) ([]*domain.ChessGame, error) {
	if limit <= 0 {
		limit = 10
	}
	a.mu.RLock()
	items := make([]*domain.ChessGame, 0, len(a.byUser[userID]))
	for _, id := range a.byUser[userID] {
		items = append(items, copyRecord(a.byID[id]))
	}
	a.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].GameID > items[j].GameID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
