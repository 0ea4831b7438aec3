package gamestore

import (
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-chess/internal/domain"
)

// SANMoves replays UCI moves from the initial position and returns them in standard algebraic
// notation. On a move that cannot be replayed it returns the moves converted so far.
//
// The last move may be a pawn reaching the last rank without a piece letter (a game forfeited
// while the promotion was pending); it is rendered without the "=X" suffix.
func SANMoves(moves []string) ([]string, error) {
	game := nchess.NewGame()
	out := make([]string, 0, len(moves))
	for i, uci := range moves {
		pos := game.Position()
		text := strings.ToLower(strings.TrimSpace(uci))
		if i == len(moves)-1 && len(text) == 4 {
			if san, ok := unresolvedPromotionSAN(game, text); ok {
				return append(out, san), nil
			}
		}
		mv, err := nchess.UCINotation{}.Decode(pos, text)
		if err != nil {
			return out, fmt.Errorf("decode move %d %q: %w", i+1, uci, err)
		}
		san := nchess.AlgebraicNotation{}.Encode(pos, mv)
		if err := game.Move(mv, nil); err != nil {
			return out, fmt.Errorf("replay move %d %q: %w", i+1, uci, err)
		}
		out = append(out, san)
	}
	return out, nil
}

// unresolvedPromotionSAN reports whether text is a legal pawn move to the last rank with no
// piece letter, and encodes it as the queen promotion without the "=Q" and check suffix.
func unresolvedPromotionSAN(game *nchess.Game, text string) (string, bool) {
	pos := game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, text+"q")
	if err != nil {
		return "", false
	}
	legal := false
	for _, vm := range game.ValidMoves() {
		if vm.S1() == mv.S1() && vm.S2() == mv.S2() && vm.Promo() == nchess.Queen {
			legal = true
			break
		}
	}
	if !legal {
		return "", false
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if i := strings.IndexByte(san, '='); i > 0 {
		san = san[:i]
	}
	return san, true
}

func pgnResult(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	case "draw":
		return "1/2-1/2"
	default:
		return "*"
	}
}

// BuildPGN renders an archived game with the seven-tag roster and numbered SAN moves.
func BuildPGN(rec *domain.ChessGame) string {
	if rec == nil {
		return ""
	}
	result := pgnResult(rec.Result)
	date := rec.EndedAt
	if date.IsZero() {
		date = time.Now()
	}

	var b strings.Builder
	b.WriteString("[Event \"Casual game\"]\n")
	b.WriteString("[Site \"cheese-chess\"]\n")
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	b.WriteString("[Round \"-\"]\n")
	fmt.Fprintf(&b, "[White \"%s\"]\n", sanitizePGN(rec.WhiteName))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", sanitizePGN(rec.BlackName))
	fmt.Fprintf(&b, "[Result \"%s\"]\n", result)
	if m := strings.TrimSpace(rec.ResultMethod); m != "" {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", sanitizePGN(m))
	}
	b.WriteString("\n")

	for i := 0; i < len(rec.MovesSAN); i += 2 {
		fmt.Fprintf(&b, "%d. %s", i/2+1, strings.TrimSpace(rec.MovesSAN[i]))
		if i+1 < len(rec.MovesSAN) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(rec.MovesSAN[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
