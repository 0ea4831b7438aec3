package chess

// FiftyMoveLimit is the half-move clock value at which the game is drawn.
const FiftyMoveLimit = 100

// IsFiftyMoveDraw: 100 plies without a capture or a pawn move.
func IsFiftyMoveDraw(s State) bool { return s.HalfMoveClock >= FiftyMoveLimit }

// IsThreefoldRepetition: the current snapshot occurs at least three times in History.
func IsThreefoldRepetition(s State) bool {
	key := s.Snapshot()
	n := 0
	for _, h := range s.History {
		if h == key {
			n++
			if n >= 3 {
				return true
			}
		}
	}
	return false
}

// IsInsufficientMaterial is deliberately narrow: at most one piece besides the kings, and
// that piece is a bishop or a knight. King and two knights against king is not covered.
func IsInsufficientMaterial(b Board) bool {
	var others []Piece
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b[row][col]
			if p.IsEmpty() || p.Kind == King {
				continue
			}
			others = append(others, p)
			if len(others) > 1 {
				return false
			}
		}
	}
	if len(others) == 0 {
		return true
	}
	k := others[0].Kind
	return k == Bishop || k == Knight
}

// DrawReason returns the first automatic draw rule that applies, or DrawNone.
func DrawReason(s State) DrawKind {
	switch {
	case IsFiftyMoveDraw(s):
		return DrawFiftyMove
	case IsThreefoldRepetition(s):
		return DrawRepetition
	case IsInsufficientMaterial(s.Board):
		return DrawInsufficientMaterial
	default:
		return DrawNone
	}
}
