package gamestore

import "context"

// Store keeps live games. Update is the only way to change a stored game: it runs fn on a
// fresh copy and commits the result only if nobody else committed in between, so two writers
// working from the same stale state never both succeed.
type Store interface {
	Create(ctx context.Context, g *Game) error
	Load(ctx context.Context, id string) (*Game, error)
	// Update applies fn to the current game and persists it. If fn returns an error nothing is
	// written and that error is returned.
	Update(ctx context.Context, id string, fn func(g *Game) error) (*Game, error)
	Delete(ctx context.Context, id string) error
	// GamesByUser returns every stored game the user is seated in, most recently updated first.
	GamesByUser(ctx context.Context, userID string) ([]*Game, error)
	// ListWaiting returns games that still have a free seat, oldest first.
	ListWaiting(ctx context.Context) ([]*Game, error)
}
