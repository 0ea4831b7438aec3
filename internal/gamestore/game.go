package gamestore

import (
	"errors"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/chess"
)

var (
	ErrNotFound = errors.New("game not found")
	ErrConflict = errors.New("concurrent update, retry")
	ErrExists   = errors.New("game already exists")
)

// Game is a live game: two seats and the engine state, plus the move list in UCI text.
type Game struct {
	ID        string      `json:"id"`
	WhiteID   string      `json:"white_id"`
	WhiteName string      `json:"white_name"`
	BlackID   string      `json:"black_id"`
	BlackName string      `json:"black_name"`
	State     chess.State `json:"state"`
	MovesUCI  []string    `json:"moves_uci"`
	// PendingUCI holds the pawn move awaiting a promotion choice.
	PendingUCI string    `json:"pending_uci,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ColorOf returns the seat held by userID.
func (g *Game) ColorOf(userID string) (chess.Color, bool) {
	userID = strings.TrimSpace(userID)
	switch {
	case userID == "":
		return chess.White, false
	case g.WhiteID == userID:
		return chess.White, true
	case g.BlackID == userID:
		return chess.Black, true
	default:
		return chess.White, false
	}
}

// PlayerOf returns the id and display name seated on color c.
func (g *Game) PlayerOf(c chess.Color) (id, name string) {
	if c == chess.White {
		return g.WhiteID, g.WhiteName
	}
	return g.BlackID, g.BlackName
}

// Participants lists the filled seats.
func (g *Game) Participants() []string {
	var out []string
	for _, id := range []string{g.WhiteID, g.BlackID} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Clone returns a deep copy.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	out.State = g.State.Clone()
	out.MovesUCI = append([]string{}, g.MovesUCI...)
	return &out
}
