package gamestore

import (
	"context"
	"errors"
	"time"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
)

var ErrNotCompleted = errors.New("game is not completed")

// Archive stores finished games permanently.
type Archive interface {
	SaveResult(ctx context.Context, rec *domain.ChessGame) error
	GetResult(ctx context.Context, gameID string) (*domain.ChessGame, error)
	RecentByUser(ctx context.Context, userID string, limit int) ([]*domain.ChessGame, error)
}

// NewRecord converts a completed live game into its archive record. The record is returned
// even when SAN conversion fails; the error reports the failure and MovesSAN stays partial.
func NewRecord(g *Game) (*domain.ChessGame, error) {
	if g == nil || g.State.Status != chess.StatusCompleted || g.State.Result == nil {
		return nil, ErrNotCompleted
	}
	res := g.State.Result
	rec := &domain.ChessGame{
		GameID:       g.ID,
		WhiteID:      g.WhiteID,
		WhiteName:    g.WhiteName,
		BlackID:      g.BlackID,
		BlackName:    g.BlackName,
		Result:       "draw",
		ResultMethod: string(res.Reason),
		MovesUCI:     append([]string{}, g.MovesUCI...),
		FinalFEN:     g.State.FEN(),
		StartedAt:    g.CreatedAt,
		EndedAt:      g.UpdatedAt,
	}
	if res.Winner != nil {
		rec.Result = res.Winner.String()
	}
	if res.Reason == chess.ReasonDraw && res.Draw != chess.DrawNone {
		rec.ResultMethod = string(res.Draw)
	}
	if d := rec.EndedAt.Sub(rec.StartedAt); d > 0 {
		rec.Duration = d.Round(time.Millisecond)
	}
	san, err := SANMoves(g.MovesUCI)
	rec.MovesSAN = san
	rec.PGN = BuildPGN(rec)
	return rec, err
}
