package chess

import "fmt"

// Rules is the single entry point for state transitions. It is immutable after construction
// and safe for concurrent use; all of its methods are pure functions of their arguments.
type Rules struct {
	historyLimit int
}

// Option configures Rules.
type Option func(*Rules)

// WithHistoryLimit bounds the position history kept for repetition detection to the last n
// snapshots. n <= 0 keeps the whole game, which is the default.
func WithHistoryLimit(n int) Option {
	return func(r *Rules) {
		if n < 0 {
			n = 0
		}
		r.historyLimit = n
	}
}

// NewRules builds a rule set.
func NewRules(opts ...Option) *Rules {
	r := &Rules{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HistoryLimit returns the configured snapshot bound (0 = unbounded).
func (r *Rules) HistoryLimit() int { return r.historyLimit }

// NewPosition builds an active state around an arbitrary board, with no castling rights,
// no en passant target and an empty history. Check flags are not evaluated; use Start on a
// waiting state for that.
func NewPosition(b Board, turn Color) State {
	return State{
		Board:    b,
		Turn:     turn,
		History:  []string{},
		Captured: Captured{White: []PieceKind{}, Black: []PieceKind{}},
		Status:   StatusActive,
	}
}

// Start moves a waiting game to active and evaluates the starting position. Starting an
// active game returns it unchanged.
func (r *Rules) Start(s State) (State, error) {
	switch s.Status {
	case StatusCompleted:
		return s, reject(ErrGameCompleted, Move{}, "")
	case StatusActive:
		return s, nil
	}
	next := s.Clone()
	next.Status = StatusActive
	r.evaluate(&next)
	return next, nil
}

// ApplyMove validates mv against s and returns the successor state. On any rejection the
// returned error wraps one of the package's rejection kinds and s is returned untouched.
//
// A pawn reaching the last rank without mv.Promotion leaves the successor with a pending
// promotion: the pawn stands on the last rank, the turn is not switched and CommitPromotion
// must be called before any other move.
func (r *Rules) ApplyMove(s State, mv Move) (State, error) {
	switch s.Status {
	case StatusCompleted:
		return s, reject(ErrGameCompleted, mv, "")
	case StatusWaiting:
		return s, reject(ErrGameNotStarted, mv, "")
	}
	if s.PendingPromotion != nil {
		return s, reject(ErrPromotionPending, mv, "promotion on "+s.PendingPromotion.String()+" must be resolved first")
	}
	if !mv.From.Valid() || !mv.To.Valid() {
		return s, reject(ErrIllegalMove, mv, "square off the board")
	}
	p, ok := s.Board.PieceAt(mv.From)
	if !ok {
		return s, reject(ErrNoPieceAtOrigin, mv, "")
	}
	if p.Color != s.Turn {
		return s, reject(ErrIllegalMove, mv, "not "+p.Color.String()+"'s turn")
	}
	if q, occupied := s.Board.PieceAt(mv.To); occupied && q.Color == p.Color {
		return s, reject(ErrIllegalMove, mv, "destination holds own piece")
	}
	if mv.From == mv.To || !validGeometry(s, mv.From, mv.To, p) {
		return s, reject(ErrIllegalMove, mv, p.Kind.String()+" cannot move that way")
	}

	board, fx := play(s.Board, mv.From, mv.To)
	if InCheck(board, p.Color) {
		return s, reject(ErrIllegalMove, mv, "king would be in check")
	}
	if mv.Promotion != NoKind && (!fx.promotion || !mv.Promotion.IsPromotionChoice()) {
		return s, reject(ErrInvalidPromotion, mv, "")
	}

	next := s.Clone()
	next.Board = board
	if !fx.captured.IsEmpty() {
		next.Captured = next.Captured.add(p.Color, fx.captured.Kind)
	}
	next.Castling = next.Castling.touch(mv.From).touch(mv.To)
	next.EnPassant = nil
	if fx.doubleStep {
		skipped := Sq((mv.From.Row+mv.To.Row)/2, mv.From.Col)
		next.EnPassant = &skipped
	}
	// The mover cannot be in check after a legal move.
	next.Check = false
	next.Checkers = nil

	if fx.promotion {
		if mv.Promotion == NoKind {
			at := mv.To
			next.PendingPromotion = &at
			return next, nil
		}
		next.Board = next.Board.Set(mv.To, Piece{Kind: mv.Promotion, Color: p.Color})
	}

	r.finishPly(&next, p.Kind == Pawn || !fx.captured.IsEmpty())
	return next, nil
}

// CommitPromotion resolves a pending promotion with choice, then completes the ply.
func (r *Rules) CommitPromotion(s State, choice PieceKind) (State, error) {
	switch s.Status {
	case StatusCompleted:
		return s, reject(ErrGameCompleted, Move{}, "")
	case StatusWaiting:
		return s, reject(ErrGameNotStarted, Move{}, "")
	}
	if s.PendingPromotion == nil {
		return s, reject(ErrInvalidPromotion, Move{}, "no promotion pending")
	}
	if !choice.IsPromotionChoice() {
		return s, reject(ErrInvalidPromotion, Move{}, "cannot promote to "+choice.String())
	}
	sq := *s.PendingPromotion
	next := s.Clone()
	next.Board = next.Board.Set(sq, Piece{Kind: choice, Color: s.Turn})
	next.PendingPromotion = nil
	r.finishPly(&next, true)
	return next, nil
}

// ForceComplete ends the game with an externally decided reason (forfeit or timeout) and
// winner, without consulting the board.
func (r *Rules) ForceComplete(s State, reason Reason, winner Color) (State, error) {
	if s.Status == StatusCompleted {
		return s, reject(ErrGameCompleted, Move{}, "")
	}
	if reason != ReasonForfeit && reason != ReasonTimeout {
		return s, reject(ErrInvalidResult, Move{}, "reason "+string(reason)+" is derived by the engine")
	}
	if winner != White && winner != Black {
		return s, reject(ErrInvalidResult, Move{}, fmt.Sprintf("winner %d is not a color", uint8(winner)))
	}
	next := s.Clone()
	next.Status = StatusCompleted
	w, l := winner, winner.Opposite()
	next.Result = &Result{Winner: &w, Loser: &l, Reason: reason}
	return next, nil
}

// finishPly applies the bookkeeping shared by ordinary moves and committed promotions, flips
// the turn and evaluates the new position.
func (r *Rules) finishPly(s *State, resetClock bool) {
	if resetClock {
		s.HalfMoveClock = 0
	} else {
		s.HalfMoveClock++
	}
	s.MoveCount++
	s.Turn = s.Turn.Opposite()
	s.History = append(s.History, s.Snapshot())
	if r.historyLimit > 0 && len(s.History) > r.historyLimit {
		s.History = append([]string(nil), s.History[len(s.History)-r.historyLimit:]...)
	}
	r.evaluate(s)
}

// evaluate recomputes check, checkmate, stalemate and draws for the side to move, completing
// the game when one of them ends it.
func (r *Rules) evaluate(s *State) {
	info := KingInCheck(*s)
	s.Check = info.InCheck
	s.Checkers = info.Checkers
	legal := HasLegalMove(*s)
	s.Checkmate = info.InCheck && !legal
	s.Stalemate = !info.InCheck && !legal

	switch {
	case s.Checkmate:
		w, l := s.Turn.Opposite(), s.Turn
		s.Status = StatusCompleted
		s.Result = &Result{Winner: &w, Loser: &l, Reason: ReasonCheckmate}
	case s.Stalemate:
		s.Status = StatusCompleted
		s.Result = &Result{Reason: ReasonStalemate}
	default:
		if kind := DrawReason(*s); kind != DrawNone {
			s.Status = StatusCompleted
			s.Result = &Result{Reason: ReasonDraw, Draw: kind}
		}
	}
}
