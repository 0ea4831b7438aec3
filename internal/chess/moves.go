package chess

// The predicates in this file answer "can this piece get from here to there" on the given
// position. They are geometric: apart from the king (whose destination must be safe) none of
// them asks whether the mover's own king ends up attacked. Capturing one's own piece is
// rejected by IsValidMove, not by the per-piece predicates.

// IsValidPawnMove covers single and double steps, diagonal captures and en passant.
func IsValidPawnMove(s State, from, to Square, c Color) bool {
	b := s.Board
	dir := c.Forward()
	dr := to.Row - from.Row
	dc := to.Col - from.Col

	switch {
	case dc == 0 && dr == dir:
		return !b.IsOccupied(to)
	case dc == 0 && dr == 2*dir:
		start := 1
		if c == Black {
			start = 6
		}
		mid := Sq(from.Row+dir, from.Col)
		return from.Row == start && !b.IsOccupied(mid) && !b.IsOccupied(to)
	case abs(dc) == 1 && dr == dir:
		if b.IsOpponent(to, c) {
			return true
		}
		return isEnPassantCapture(s, from, to, c)
	default:
		return false
	}
}

// IsValidKnightMove: knights jump, nothing can block them.
func IsValidKnightMove(_ Board, from, to Square) bool {
	dr, dc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	return (dr == 1 && dc == 2) || (dr == 2 && dc == 1)
}

func IsValidBishopMove(b Board, from, to Square) bool {
	dr, dc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	if dr != dc || dr == 0 {
		return false
	}
	return RayClear(b, from, to)
}

func IsValidRookMove(b Board, from, to Square) bool {
	dr, dc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	if (dr == 0) == (dc == 0) {
		return false
	}
	return RayClear(b, from, to)
}

func IsValidQueenMove(b Board, from, to Square) bool {
	return IsValidRookMove(b, from, to) || IsValidBishopMove(b, from, to)
}

// IsValidKingMove accepts a one-square step onto a square that is not attacked once the king
// stands there, or a castling move two columns along the back rank.
func IsValidKingMove(s State, from, to Square, c Color) bool {
	dr, dc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	if dr <= 1 && dc <= 1 && dr+dc > 0 {
		return kingSafeAt(s.Board, from, to, c)
	}
	if dr == 0 && dc == 2 {
		return canCastle(s, from, to, c)
	}
	return false
}

// IsValidMove dispatches to the predicate of the piece standing on from, after rejecting an
// empty origin and a destination holding a piece of the mover's color.
func IsValidMove(s State, from, to Square) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	p, ok := s.Board.PieceAt(from)
	if !ok {
		return false
	}
	if q, occupied := s.Board.PieceAt(to); occupied && q.Color == p.Color {
		return false
	}
	return validGeometry(s, from, to, p)
}

func validGeometry(s State, from, to Square, p Piece) bool {
	switch p.Kind {
	case Pawn:
		return IsValidPawnMove(s, from, to, p.Color)
	case Knight:
		return IsValidKnightMove(s.Board, from, to)
	case Bishop:
		return IsValidBishopMove(s.Board, from, to)
	case Rook:
		return IsValidRookMove(s.Board, from, to)
	case Queen:
		return IsValidQueenMove(s.Board, from, to)
	case King:
		return IsValidKingMove(s, from, to, p.Color)
	default:
		return false
	}
}
