package chess

import (
	"fmt"
	"strings"
)

// Status is the lifecycle stage of a game.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Reason explains why a game completed. Forfeit and Timeout are only ever supplied by
// callers through ForceComplete.
type Reason string

const (
	ReasonCheckmate Reason = "checkmate"
	ReasonStalemate Reason = "stalemate"
	ReasonDraw      Reason = "draw"
	ReasonForfeit   Reason = "forfeit"
	ReasonTimeout   Reason = "timeout"
)

// DrawKind names the automatic draw rule that ended a game.
type DrawKind string

const (
	DrawNone                 DrawKind = ""
	DrawFiftyMove            DrawKind = "fifty_move"
	DrawRepetition           DrawKind = "threefold_repetition"
	DrawInsufficientMaterial DrawKind = "insufficient_material"
)

// Result is populated once Status is StatusCompleted. Winner and Loser are nil for drawn
// outcomes.
type Result struct {
	Winner *Color   `json:"winner,omitempty"`
	Loser  *Color   `json:"loser,omitempty"`
	Reason Reason   `json:"reason"`
	Draw   DrawKind `json:"draw,omitempty"`
}

// CastlingRights only ever go from true to false.
type CastlingRights struct {
	WhiteKingSide  bool `json:"white_king_side"`
	WhiteQueenSide bool `json:"white_queen_side"`
	BlackKingSide  bool `json:"black_king_side"`
	BlackQueenSide bool `json:"black_queen_side"`
}

// AllCastlingRights is the initial set of rights.
func AllCastlingRights() CastlingRights {
	return CastlingRights{WhiteKingSide: true, WhiteQueenSide: true, BlackKingSide: true, BlackQueenSide: true}
}

// Has reports the right for color c on the given side.
func (r CastlingRights) Has(c Color, kingSide bool) bool {
	switch {
	case c == White && kingSide:
		return r.WhiteKingSide
	case c == White:
		return r.WhiteQueenSide
	case kingSide:
		return r.BlackKingSide
	default:
		return r.BlackQueenSide
	}
}

func (r CastlingRights) revoke(c Color, kingSide bool) CastlingRights {
	switch {
	case c == White && kingSide:
		r.WhiteKingSide = false
	case c == White:
		r.WhiteQueenSide = false
	case kingSide:
		r.BlackKingSide = false
	default:
		r.BlackQueenSide = false
	}
	return r
}

func (r CastlingRights) revokeAll(c Color) CastlingRights {
	return r.revoke(c, true).revoke(c, false)
}

// touch revokes whatever right depends on a piece standing on sq, because a piece left or
// arrived at (captured on) that square.
func (r CastlingRights) touch(sq Square) CastlingRights {
	for _, c := range [2]Color{White, Black} {
		rank := c.BackRank()
		if sq.Row != rank {
			continue
		}
		switch sq.Col {
		case 4:
			r = r.revokeAll(c)
		case 7:
			r = r.revoke(c, true)
		case 0:
			r = r.revoke(c, false)
		}
	}
	return r
}

// FEN renders the rights in FEN order ("KQkq", "-" when none).
func (r CastlingRights) FEN() string {
	var sb strings.Builder
	if r.WhiteKingSide {
		sb.WriteByte('K')
	}
	if r.WhiteQueenSide {
		sb.WriteByte('Q')
	}
	if r.BlackKingSide {
		sb.WriteByte('k')
	}
	if r.BlackQueenSide {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// Captured lists, per capturing side, the kinds taken in capture order.
type Captured struct {
	White []PieceKind `json:"white"`
	Black []PieceKind `json:"black"`
}

func (c Captured) clone() Captured {
	return Captured{White: cloneSlice(c.White), Black: cloneSlice(c.Black)}
}

func (c Captured) add(by Color, k PieceKind) Captured {
	if by == White {
		c.White = append(c.White, k)
	} else {
		c.Black = append(c.Black, k)
	}
	return c
}

// State is a complete, immutable-per-ply game state. Engine functions never modify a State
// they receive; they return a fresh one.
type State struct {
	Board            Board          `json:"board"`
	Turn             Color          `json:"turn"`
	Castling         CastlingRights `json:"castling"`
	EnPassant        *Square        `json:"en_passant,omitempty"`
	HalfMoveClock    int            `json:"half_move_clock"`
	MoveCount        int            `json:"move_count"`
	History          []string       `json:"history"`
	Captured         Captured       `json:"captured"`
	Check            bool           `json:"check"`
	Checkers         []Square       `json:"checkers,omitempty"`
	Checkmate        bool           `json:"checkmate"`
	Stalemate        bool           `json:"stalemate"`
	Status           Status         `json:"status"`
	Result           *Result        `json:"result,omitempty"`
	PendingPromotion *Square        `json:"pending_promotion,omitempty"`
}

// NewGame returns the initial state in StatusWaiting. Call Start once both seats are filled.
func NewGame() State {
	return State{
		Board:    StartingBoard(),
		Turn:     White,
		Castling: AllCastlingRights(),
		History:  []string{},
		Captured: Captured{White: []PieceKind{}, Black: []PieceKind{}},
		Status:   StatusWaiting,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.History = cloneSlice(s.History)
	out.Captured = s.Captured.clone()
	out.Checkers = cloneSlice(s.Checkers)
	if s.EnPassant != nil {
		ep := *s.EnPassant
		out.EnPassant = &ep
	}
	if s.PendingPromotion != nil {
		pp := *s.PendingPromotion
		out.PendingPromotion = &pp
	}
	if s.Result != nil {
		r := *s.Result
		if r.Winner != nil {
			w := *r.Winner
			r.Winner = &w
		}
		if r.Loser != nil {
			l := *r.Loser
			r.Loser = &l
		}
		out.Result = &r
	}
	return out
}

// Snapshot is the repetition key of the position: placement, side to move and rights.
func (s State) Snapshot() string {
	return fmt.Sprintf("%s %c %s", s.Board.Key(), s.Turn.String()[0], s.Castling.FEN())
}

// IsPromotionPending reports whether the side to move owes a promotion choice.
func (s State) IsPromotionPending() bool { return s.PendingPromotion != nil }

// IsOver reports whether the game has completed.
func (s State) IsOver() bool { return s.Status == StatusCompleted }

// cloneSlice copies s, keeping a nil slice nil and an empty one empty.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
