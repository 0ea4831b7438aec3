package match

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-chess/internal/chess"
)

// resolveMove reads coordinate text (e2e4, e7e8q) and falls back to SAN (Nf3, exd5, O-O)
// by replaying the game so far.
func resolveMove(played []string, text string) (chess.Move, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return chess.Move{}, fmt.Errorf("%w: empty move", ErrBadMove)
	}
	if mv, err := chess.ParseMove(raw); err == nil {
		return mv, nil
	}

	game, err := reconstruct(played)
	if err != nil {
		return chess.Move{}, fmt.Errorf("%w: %v", ErrBadMove, err)
	}
	if err := game.PushNotationMove(raw, nchess.AlgebraicNotation{}, nil); err != nil {
		return chess.Move{}, fmt.Errorf("%w: %q is neither coordinate nor algebraic notation", ErrBadMove, raw)
	}
	last := lastMove(game)
	if last == nil {
		return chess.Move{}, fmt.Errorf("%w: %q", ErrBadMove, raw)
	}
	mv, err := chess.ParseMove(last.String())
	if err != nil {
		return chess.Move{}, fmt.Errorf("%w: %v", ErrBadMove, err)
	}
	return mv, nil
}

// reconstruct replays stored coordinate moves from the initial position.
func reconstruct(moves []string) (*nchess.Game, error) {
	game := nchess.NewGame()
	for i, mv := range moves {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay move %d %q: %w", i+1, mv, err)
		}
	}
	return game, nil
}

func lastMove(game *nchess.Game) *nchess.Move {
	moves := game.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}
