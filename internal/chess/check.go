package chess

// CheckInfo reports whether a king is attacked and from which squares.
type CheckInfo struct {
	InCheck  bool
	Checkers []Square
}

// attacks reports whether the piece on from attacks to. It reuses the movement predicates
// with two differences: pawns attack diagonally whatever stands on the target, and kings
// attack their eight neighbours without the safety test (which would recurse).
func attacks(b Board, from, to Square) bool {
	p, ok := b.PieceAt(from)
	if !ok || from == to {
		return false
	}
	dr := to.Row - from.Row
	dc := to.Col - from.Col
	switch p.Kind {
	case Pawn:
		return dr == p.Color.Forward() && abs(dc) == 1
	case Knight:
		return IsValidKnightMove(b, from, to)
	case Bishop:
		return IsValidBishopMove(b, from, to)
	case Rook:
		return IsValidRookMove(b, from, to)
	case Queen:
		return IsValidQueenMove(b, from, to)
	case King:
		return abs(dr) <= 1 && abs(dc) <= 1
	default:
		return false
	}
}

// Attackers lists the squares of every piece of color by attacking sq, in row-major order.
func Attackers(b Board, sq Square, by Color) []Square {
	var out []Square
	for _, from := range b.Squares(by) {
		if attacks(b, from, sq) {
			out = append(out, from)
		}
	}
	return out
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func IsSquareAttacked(b Board, sq Square, by Color) bool {
	for _, from := range b.Squares(by) {
		if attacks(b, from, sq) {
			return true
		}
	}
	return false
}

// InCheck reports whether c's king is attacked on b. A board without that king is never in
// check.
func InCheck(b Board, c Color) bool {
	k, ok := b.FindKing(c)
	if !ok {
		return false
	}
	return IsSquareAttacked(b, k, c.Opposite())
}

// KingInCheck evaluates the side to move, collecting every checking piece so double checks
// are visible.
func KingInCheck(s State) CheckInfo {
	k, ok := s.Board.FindKing(s.Turn)
	if !ok {
		return CheckInfo{}
	}
	checkers := Attackers(s.Board, k, s.Turn.Opposite())
	return CheckInfo{InCheck: len(checkers) > 0, Checkers: checkers}
}

// IsLegalMove is IsValidMove plus the self-check rule: the move is simulated, castling rook
// and en passant removal included, and rejected if the mover's king is attacked afterwards.
func IsLegalMove(s State, from, to Square) bool {
	if !IsValidMove(s, from, to) {
		return false
	}
	p, _ := s.Board.PieceAt(from)
	after, _ := play(s.Board, from, to)
	return !InCheck(after, p.Color)
}

// HasLegalMove tries every own piece against every square and stops at the first legal one.
func HasLegalMove(s State) bool {
	for _, from := range s.Board.Squares(s.Turn) {
		for row := 0; row < 8; row++ {
			for col := 0; col < 8; col++ {
				if IsLegalMove(s, from, Sq(row, col)) {
					return true
				}
			}
		}
	}
	return false
}

// LegalMoves lists every legal move for the side to move. Promotions are listed once per
// choice.
func LegalMoves(s State) []Move {
	var out []Move
	for _, from := range s.Board.Squares(s.Turn) {
		p, _ := s.Board.PieceAt(from)
		for row := 0; row < 8; row++ {
			for col := 0; col < 8; col++ {
				to := Sq(row, col)
				if !IsLegalMove(s, from, to) {
					continue
				}
				if p.Kind == Pawn && to.Row == p.Color.Opposite().BackRank() {
					for _, k := range []PieceKind{Queen, Rook, Bishop, Knight} {
						out = append(out, Move{From: from, To: to, Promotion: k})
					}
					continue
				}
				out = append(out, Move{From: from, To: to})
			}
		}
	}
	return out
}

// IsCheckmate: the side to move is in check and has no legal move.
func IsCheckmate(s State) bool {
	return KingInCheck(s).InCheck && !HasLegalMove(s)
}

// IsStalemate: the side to move is not in check and has no legal move.
func IsStalemate(s State) bool {
	return !KingInCheck(s).InCheck && !HasLegalMove(s)
}
