package chess

// isEnPassantCapture: the destination is the recorded target square, it is empty, and the
// pawn that double-stepped past it stands beside the capturing pawn.
func isEnPassantCapture(s State, from, to Square, c Color) bool {
	if s.EnPassant == nil || *s.EnPassant != to || s.Board.IsOccupied(to) {
		return false
	}
	victim, ok := s.Board.PieceAt(Sq(from.Row, to.Col))
	return ok && victim.Kind == Pawn && victim.Color != c
}

// canCastle checks rights, the rook, the empty path and that the king is not attacked on its
// origin, transit or final square.
func canCastle(s State, from, to Square, c Color) bool {
	rank := c.BackRank()
	if from != Sq(rank, 4) || to.Row != rank {
		return false
	}
	kingSide := to.Col == 6
	if !kingSide && to.Col != 2 {
		return false
	}
	if !s.Castling.Has(c, kingSide) {
		return false
	}
	b := s.Board
	rookSq := Sq(rank, 0)
	step := -1
	if kingSide {
		rookSq = Sq(rank, 7)
		step = 1
	}
	if rook, ok := b.PieceAt(rookSq); !ok || rook != (Piece{Kind: Rook, Color: c}) {
		return false
	}
	if !RayClear(b, from, rookSq) {
		return false
	}
	for i := 0; i <= 2; i++ {
		if !kingSafeAt(b, from, Sq(rank, from.Col+i*step), c) {
			return false
		}
	}
	return true
}

// kingSafeAt builds the hypothetical board with c's king moved from from to sq and asks
// whether the opponent attacks sq there.
func kingSafeAt(b Board, from, sq Square, c Color) bool {
	hyp := b.Set(from, Piece{}).Set(sq, Piece{Kind: King, Color: c})
	return !IsSquareAttacked(hyp, sq, c.Opposite())
}

// moveEffects records what executing a move did besides relocating the mover.
type moveEffects struct {
	captured   Piece
	capturedAt Square
	castled    bool
	enPassant  bool
	doubleStep bool
	promotion  bool
}

// play executes a geometrically valid move on a copy of b, including the castling rook
// relocation and the en passant removal. It does not decide promotion pieces.
func play(b Board, from, to Square) (Board, moveEffects) {
	var fx moveEffects
	p := b[from.Row][from.Col]
	target := b[to.Row][to.Col]

	switch {
	case p.Kind == Pawn && from.Col != to.Col && target.IsEmpty():
		fx.enPassant = true
		fx.capturedAt = Sq(from.Row, to.Col)
		fx.captured = b[from.Row][to.Col]
		b = b.Set(fx.capturedAt, Piece{})
	case !target.IsEmpty():
		fx.captured = target
		fx.capturedAt = to
	}

	b = b.Set(from, Piece{}).Set(to, p)

	if p.Kind == King && abs(to.Col-from.Col) == 2 {
		fx.castled = true
		rookFrom, rookTo := Sq(from.Row, 0), Sq(from.Row, to.Col+1)
		if to.Col > from.Col {
			rookFrom, rookTo = Sq(from.Row, 7), Sq(from.Row, to.Col-1)
		}
		rook := b[rookFrom.Row][rookFrom.Col]
		b = b.Set(rookFrom, Piece{}).Set(rookTo, rook)
	}
	if p.Kind == Pawn {
		fx.doubleStep = abs(to.Row-from.Row) == 2
		fx.promotion = to.Row == p.Color.Opposite().BackRank()
	}
	return b, fx
}
