package chess

import (
	"errors"
	"reflect"
	"testing"
)

func started(t *testing.T, r *Rules) State {
	t.Helper()
	s, err := r.Start(NewGame())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func playLine(t *testing.T, r *Rules, s State, moves ...string) State {
	t.Helper()
	for _, m := range moves {
		next, err := r.ApplyMove(s, mv(t, m))
		if err != nil {
			t.Fatalf("ApplyMove(%s): %v", m, err)
		}
		s = next
	}
	return s
}

func TestNewGameIsWaiting(t *testing.T) {
	s := NewGame()
	if s.Status != StatusWaiting || s.Turn != White || s.Castling != AllCastlingRights() {
		t.Fatalf("unexpected initial state: status=%s turn=%s rights=%s", s.Status, s.Turn, s.Castling.FEN())
	}
	if len(s.History) != 0 || s.EnPassant != nil || s.MoveCount != 0 {
		t.Fatalf("initial bookkeeping not empty")
	}
	r := NewRules()
	if _, err := r.ApplyMove(s, mv(t, "e2e4")); !errors.Is(err, ErrGameNotStarted) {
		t.Fatalf("move on waiting game: err=%v", err)
	}
	a, err := r.Start(s)
	if err != nil || a.Status != StatusActive {
		t.Fatalf("Start: status=%s err=%v", a.Status, err)
	}
	if s.Status != StatusWaiting {
		t.Fatalf("Start mutated its input")
	}
}

func TestOpeningPawnMove(t *testing.T) {
	r := NewRules()
	s := playLine(t, r, started(t, r), "e2e4")

	if p, _ := s.Board.PieceAt(sq(t, "e4")); p != NewPiece(White, Pawn) {
		t.Fatalf("e4 = %v", p)
	}
	if s.Board.IsOccupied(sq(t, "e2")) {
		t.Fatalf("e2 still occupied")
	}
	if s.Turn != Black || s.MoveCount != 1 || s.HalfMoveClock != 0 {
		t.Fatalf("turn=%s moves=%d clock=%d", s.Turn, s.MoveCount, s.HalfMoveClock)
	}
	if s.EnPassant == nil || *s.EnPassant != sq(t, "e3") {
		t.Fatalf("en passant target = %v, want e3", s.EnPassant)
	}
	if len(s.History) != 1 || s.History[0] != s.Snapshot() {
		t.Fatalf("history = %v", s.History)
	}
	if got := s.FEN(); got != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Fatalf("FEN = %s", got)
	}
}

func TestTurnAlternationAndClock(t *testing.T) {
	r := NewRules()
	s := started(t, r)
	if _, err := r.ApplyMove(s, mv(t, "e7e5")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("black moved on white's turn: err=%v", err)
	}
	s = playLine(t, r, s, "g1f3", "b8c6", "f3g1")
	if s.Turn != Black || s.HalfMoveClock != 3 || s.MoveCount != 3 {
		t.Fatalf("turn=%s clock=%d moves=%d", s.Turn, s.HalfMoveClock, s.MoveCount)
	}
	s = playLine(t, r, s, "e7e5")
	if s.HalfMoveClock != 0 {
		t.Fatalf("pawn move did not reset the clock: %d", s.HalfMoveClock)
	}
}

func TestRejectionsLeaveInputUntouched(t *testing.T) {
	r := NewRules()
	s := playLine(t, r, started(t, r), "e2e4", "e7e5")
	before := s.Clone()

	cases := []struct {
		move string
		kind error
	}{
		{"e3e4", ErrNoPieceAtOrigin},
		{"d7d5", ErrIllegalMove},
		{"a1a2", ErrIllegalMove},
		{"e4e5", ErrIllegalMove},
		{"f1a5", ErrIllegalMove},
		{"g1g3", ErrIllegalMove},
		{"d2d4q", ErrInvalidPromotion},
	}
	for _, c := range cases {
		got, err := r.ApplyMove(s, mv(t, c.move))
		if !errors.Is(err, c.kind) {
			t.Fatalf("%s: err=%v, want %v", c.move, err, c.kind)
		}
		var me *MoveError
		if !errors.As(err, &me) || me.Move != mv(t, c.move) {
			t.Fatalf("%s: error does not carry the move: %#v", c.move, err)
		}
		if !reflect.DeepEqual(got, before) || !reflect.DeepEqual(s, before) {
			t.Fatalf("%s: rejection changed the state", c.move)
		}
	}
}

func TestSelfCheckIsRejected(t *testing.T) {
	r := NewRules()
	s := NewPosition(diagram(t,
		"....r..k",
		"........",
		"........",
		"........",
		"........",
		"........",
		"....B...",
		"....K...",
	), White)
	// The bishop is pinned on the e-file.
	if _, err := r.ApplyMove(s, mv(t, "e2d3")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("pinned bishop moved: err=%v", err)
	}
	if IsLegalMove(s, sq(t, "e2"), sq(t, "d3")) {
		t.Fatalf("IsLegalMove accepted a pinned piece move")
	}
	if !IsValidMove(s, sq(t, "e2"), sq(t, "d3")) {
		t.Fatalf("IsValidMove is geometric and should accept the bishop move")
	}
}

func TestKingSideCastling(t *testing.T) {
	r := NewRules()
	s := playLine(t, r, started(t, r), "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1")

	if p, _ := s.Board.PieceAt(sq(t, "g1")); p != NewPiece(White, King) {
		t.Fatalf("g1 = %v", p)
	}
	if p, _ := s.Board.PieceAt(sq(t, "f1")); p != NewPiece(White, Rook) {
		t.Fatalf("f1 = %v", p)
	}
	if s.Board.IsOccupied(sq(t, "h1")) || s.Board.IsOccupied(sq(t, "e1")) {
		t.Fatalf("e1/h1 not vacated")
	}
	if s.Castling.WhiteKingSide || s.Castling.WhiteQueenSide {
		t.Fatalf("white rights survive castling: %s", s.Castling.FEN())
	}
	if !s.Castling.BlackKingSide || !s.Castling.BlackQueenSide {
		t.Fatalf("black rights lost: %s", s.Castling.FEN())
	}
}

func castlingPosition(t *testing.T, ranks ...string) State {
	t.Helper()
	s := NewPosition(diagram(t, ranks...), White)
	s.Castling = AllCastlingRights()
	return s
}

func TestCastlingConditions(t *testing.T) {
	r := NewRules()

	open := castlingPosition(t,
		"r...k..r",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K..R",
	)
	for _, m := range []string{"e1g1", "e1c1"} {
		if _, err := r.ApplyMove(open, mv(t, m)); err != nil {
			t.Fatalf("%s on open board: %v", m, err)
		}
	}

	queenSide, err := r.ApplyMove(open, mv(t, "e1c1"))
	if err != nil {
		t.Fatalf("e1c1: %v", err)
	}
	if p, _ := queenSide.Board.PieceAt(sq(t, "d1")); p != NewPiece(White, Rook) {
		t.Fatalf("queen-side rook on d1 = %v", p)
	}

	noRight := open
	noRight.Castling.WhiteKingSide = false
	if _, err := r.ApplyMove(noRight, mv(t, "e1g1")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("castled without the right: err=%v", err)
	}

	blocked := castlingPosition(t,
		"r...k..r",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"RN..K..R",
	)
	if _, err := r.ApplyMove(blocked, mv(t, "e1c1")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("castled through b1: err=%v", err)
	}

	throughAttack := castlingPosition(t,
		"r...kr..",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K..R",
	)
	if _, err := r.ApplyMove(throughAttack, mv(t, "e1g1")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("castled through attacked f1: err=%v", err)
	}

	// Only the king's path must be safe: an attacked b1 does not stop queen-side castling.
	rookOnB := castlingPosition(t,
		".r..k...",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K...",
	)
	if _, err := r.ApplyMove(rookOnB, mv(t, "e1c1")); err != nil {
		t.Fatalf("queen-side castling with attacked b1: %v", err)
	}

	outOfCheck := castlingPosition(t,
		"....r..k",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K..R",
	)
	if _, err := r.ApplyMove(outOfCheck, mv(t, "e1g1")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("castled out of check: err=%v", err)
	}
}

func TestCastlingRightsOnlyDecrease(t *testing.T) {
	r := NewRules()
	s := castlingPosition(t,
		"r...k..r",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K..R",
	)
	s = playLine(t, r, s, "h1h8")
	if s.Castling.WhiteKingSide || s.Castling.BlackKingSide {
		t.Fatalf("rook trade on h8 kept king-side rights: %s", s.Castling.FEN())
	}
	if !s.Castling.WhiteQueenSide || !s.Castling.BlackQueenSide {
		t.Fatalf("queen-side rights lost: %s", s.Castling.FEN())
	}
	s = playLine(t, r, s, "e8d7", "a1a2")
	if s.Castling.FEN() != "-" {
		t.Fatalf("rights survived king and rook moves: %s", s.Castling.FEN())
	}
	s = playLine(t, r, s, "d7e7", "a2a1", "e7d7")
	if s.Castling.FEN() != "-" {
		t.Fatalf("rights came back: %s", s.Castling.FEN())
	}
	// King on e1 and rook back on a1, but the right is gone.
	if _, err := r.ApplyMove(s, mv(t, "e1c1")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("castled after the rook moved: err=%v", err)
	}
}

func TestEnPassantWindow(t *testing.T) {
	r := NewRules()
	s := playLine(t, r, started(t, r), "e2e4", "a7a6", "e4e5", "d7d5")
	if s.EnPassant == nil || *s.EnPassant != sq(t, "d6") {
		t.Fatalf("target after d7d5 = %v", s.EnPassant)
	}

	took := playLine(t, r, s, "e5d6")
	if took.Board.IsOccupied(sq(t, "d5")) {
		t.Fatalf("captured pawn still on d5")
	}
	if !reflect.DeepEqual(took.Captured.White, []PieceKind{Pawn}) {
		t.Fatalf("captured = %v", took.Captured)
	}
	if took.HalfMoveClock != 0 || took.EnPassant != nil {
		t.Fatalf("clock=%d target=%v", took.HalfMoveClock, took.EnPassant)
	}

	late := playLine(t, r, s, "a2a3", "a6a5")
	if _, err := r.ApplyMove(late, mv(t, "e5d6")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("en passant allowed a move late: err=%v", err)
	}
}

func promotionPosition(t *testing.T) State {
	return NewPosition(diagram(t,
		"........",
		".P......",
		".......k",
		"........",
		"........",
		"........",
		"........",
		"K.......",
	), White)
}

func TestPromotionTwoPhase(t *testing.T) {
	r := NewRules()
	s := promotionPosition(t)

	pending, err := r.ApplyMove(s, mv(t, "b7b8"))
	if err != nil {
		t.Fatalf("b7b8: %v", err)
	}
	if pending.PendingPromotion == nil || *pending.PendingPromotion != sq(t, "b8") {
		t.Fatalf("pending = %v", pending.PendingPromotion)
	}
	if pending.Turn != White || pending.MoveCount != 0 || len(pending.History) != 0 {
		t.Fatalf("ply finished before the choice: turn=%s moves=%d", pending.Turn, pending.MoveCount)
	}
	if p, _ := pending.Board.PieceAt(sq(t, "b8")); p != NewPiece(White, Pawn) {
		t.Fatalf("b8 = %v, want the pawn", p)
	}
	if pending.Check || pending.Checkers != nil {
		t.Fatalf("mover flagged in check")
	}

	if _, err := r.ApplyMove(pending, mv(t, "a1a2")); !errors.Is(err, ErrPromotionPending) {
		t.Fatalf("move while pending: err=%v", err)
	}
	if _, err := r.CommitPromotion(pending, King); !errors.Is(err, ErrInvalidPromotion) {
		t.Fatalf("promote to king: err=%v", err)
	}
	if _, err := r.CommitPromotion(pending, Pawn); !errors.Is(err, ErrInvalidPromotion) {
		t.Fatalf("promote to pawn: err=%v", err)
	}
	if _, err := r.CommitPromotion(s, Queen); !errors.Is(err, ErrInvalidPromotion) {
		t.Fatalf("commit without pending: err=%v", err)
	}

	done, err := r.CommitPromotion(pending, Queen)
	if err != nil {
		t.Fatalf("CommitPromotion: %v", err)
	}
	if p, _ := done.Board.PieceAt(sq(t, "b8")); p != NewPiece(White, Queen) {
		t.Fatalf("b8 = %v", p)
	}
	if done.PendingPromotion != nil || done.Turn != Black || done.MoveCount != 1 || done.HalfMoveClock != 0 {
		t.Fatalf("after commit: pending=%v turn=%s moves=%d clock=%d", done.PendingPromotion, done.Turn, done.MoveCount, done.HalfMoveClock)
	}
	if done.Status != StatusActive {
		t.Fatalf("status = %s", done.Status)
	}
	if pending.PendingPromotion == nil {
		t.Fatalf("CommitPromotion mutated its input")
	}
}

func TestPromotionInOneStep(t *testing.T) {
	r := NewRules()
	s := promotionPosition(t)

	q, err := r.ApplyMove(s, mv(t, "b7b8q"))
	if err != nil {
		t.Fatalf("b7b8q: %v", err)
	}
	if p, _ := q.Board.PieceAt(sq(t, "b8")); p != NewPiece(White, Queen) || q.Turn != Black {
		t.Fatalf("b8 = %v turn=%s", p, q.Turn)
	}

	// King and knight against king is dead.
	n, err := r.ApplyMove(s, mv(t, "b7b8n"))
	if err != nil {
		t.Fatalf("b7b8n: %v", err)
	}
	if n.Status != StatusCompleted || n.Result == nil || n.Result.Draw != DrawInsufficientMaterial {
		t.Fatalf("under-promotion to a lone knight should draw: status=%s result=%+v", n.Status, n.Result)
	}

	if _, err := r.ApplyMove(s, Move{From: sq(t, "b7"), To: sq(t, "b8"), Promotion: King}); !errors.Is(err, ErrInvalidPromotion) {
		t.Fatalf("promotion to king: err=%v", err)
	}
}

func TestCornerMate(t *testing.T) {
	r := NewRules()
	s := NewPosition(diagram(t,
		".......k",
		"........",
		".....K..",
		"........",
		"........",
		"........",
		"........",
		"......Q.",
	), White)
	s = playLine(t, r, s, "g1g7")

	if !s.Check || !s.Checkmate || s.Stalemate {
		t.Fatalf("check=%v mate=%v stalemate=%v", s.Check, s.Checkmate, s.Stalemate)
	}
	if !reflect.DeepEqual(s.Checkers, []Square{sq(t, "g7")}) {
		t.Fatalf("checkers = %v", s.Checkers)
	}
	if s.Status != StatusCompleted || s.Result == nil || s.Result.Reason != ReasonCheckmate {
		t.Fatalf("status=%s result=%+v", s.Status, s.Result)
	}
	if *s.Result.Winner != White || *s.Result.Loser != Black {
		t.Fatalf("winner=%s loser=%s", *s.Result.Winner, *s.Result.Loser)
	}
	if _, err := r.ApplyMove(s, mv(t, "h8g8")); !errors.Is(err, ErrGameCompleted) {
		t.Fatalf("move after mate: err=%v", err)
	}
}

func TestFoolsMate(t *testing.T) {
	r := NewRules()
	s := playLine(t, r, started(t, r), "f2f3", "e7e5", "g2g4", "d8h4")
	if s.Status != StatusCompleted || s.Result.Reason != ReasonCheckmate || *s.Result.Winner != Black {
		t.Fatalf("status=%s result=%+v", s.Status, s.Result)
	}
}

func TestStalemate(t *testing.T) {
	r := NewRules()
	s := NewPosition(diagram(t,
		"k.......",
		"........",
		".K......",
		"........",
		"........",
		"........",
		"........",
		"..Q.....",
	), White)
	s = playLine(t, r, s, "c1c7")

	if s.Check || s.Checkmate || !s.Stalemate {
		t.Fatalf("check=%v mate=%v stalemate=%v", s.Check, s.Checkmate, s.Stalemate)
	}
	if s.Status != StatusCompleted || s.Result.Reason != ReasonStalemate || s.Result.Winner != nil {
		t.Fatalf("status=%s result=%+v", s.Status, s.Result)
	}
}

func TestDoubleCheck(t *testing.T) {
	r := NewRules()
	s := NewPosition(diagram(t,
		"....k...",
		"........",
		"r.......",
		"........",
		"....N...",
		"........",
		"........",
		"....R..K",
	), White)
	s = playLine(t, r, s, "e4f6")

	want := []Square{sq(t, "e1"), sq(t, "f6")}
	if !s.Check || !reflect.DeepEqual(s.Checkers, want) {
		t.Fatalf("checkers = %v, want %v", s.Checkers, want)
	}
	legal := LegalMoves(s)
	if len(legal) == 0 {
		t.Fatalf("black should be able to step away")
	}
	for _, m := range legal {
		if m.From != sq(t, "e8") {
			t.Fatalf("only king moves answer a double check, got %s", m)
		}
	}
	// Taking the knight leaves the rook check.
	if _, err := r.ApplyMove(s, mv(t, "a6f6")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("a6f6: err=%v", err)
	}
}

func TestThreefoldOnThirdOccurrence(t *testing.T) {
	r := NewRules()
	s := started(t, r)
	cycle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	s = playLine(t, r, s, cycle...)
	s = playLine(t, r, s, cycle...)
	// The start position has now been reached twice after moves; Nf3 has occurred twice.
	if s.Status != StatusActive {
		t.Fatalf("drawn too early: %+v", s.Result)
	}
	s = playLine(t, r, s, "g1f3")
	if s.Status != StatusCompleted || s.Result.Reason != ReasonDraw || s.Result.Draw != DrawRepetition {
		t.Fatalf("status=%s result=%+v", s.Status, s.Result)
	}
	if !IsThreefoldRepetition(s) {
		t.Fatalf("IsThreefoldRepetition = false")
	}
}

func TestHistoryLimit(t *testing.T) {
	r := NewRules(WithHistoryLimit(3))
	s := started(t, r)
	s = playLine(t, r, s, "g1f3", "g8f6", "f3g1", "f6g8", "g1f3")
	if len(s.History) != 3 {
		t.Fatalf("history len = %d, want 3", len(s.History))
	}
	if s.History[2] != s.Snapshot() {
		t.Fatalf("latest snapshot not kept last")
	}
	if NewRules(WithHistoryLimit(-4)).HistoryLimit() != 0 {
		t.Fatalf("negative limit should mean unbounded")
	}
}

func TestFiftyMoveRule(t *testing.T) {
	r := NewRules()
	base := NewPosition(diagram(t,
		"....k...",
		"p.......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"R...K...",
	), White)
	base.HalfMoveClock = 99

	drawn := playLine(t, r, base, "a1b1")
	if drawn.HalfMoveClock != 100 || drawn.Status != StatusCompleted || drawn.Result.Draw != DrawFiftyMove {
		t.Fatalf("clock=%d status=%s result=%+v", drawn.HalfMoveClock, drawn.Status, drawn.Result)
	}

	capture := playLine(t, r, base, "a1a7")
	if capture.HalfMoveClock != 0 || capture.Status != StatusActive {
		t.Fatalf("capture: clock=%d status=%s", capture.HalfMoveClock, capture.Status)
	}
}

func TestInsufficientMaterial(t *testing.T) {
	cases := []struct {
		name string
		rank string
		want bool
	}{
		{"bare kings", "........", true},
		{"lone bishop", "..B.....", true},
		{"lone knight", "..n.....", true},
		{"two knights", "..NN....", false},
		{"bishop each", "..Bb....", false},
		{"lone rook", "..R.....", false},
		{"lone pawn", "..P.....", false},
	}
	for _, c := range cases {
		b := diagram(t,
			"....k...",
			"........",
			"........",
			c.rank,
			"........",
			"........",
			"........",
			"....K...",
		)
		if got := IsInsufficientMaterial(b); got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestForceComplete(t *testing.T) {
	r := NewRules()
	s := playLine(t, r, started(t, r), "e2e4")

	done, err := r.ForceComplete(s, ReasonTimeout, Black)
	if err != nil {
		t.Fatalf("ForceComplete: %v", err)
	}
	if done.Status != StatusCompleted || done.Result.Reason != ReasonTimeout || *done.Result.Winner != Black || *done.Result.Loser != White {
		t.Fatalf("result = %+v", done.Result)
	}
	if s.Status != StatusActive {
		t.Fatalf("ForceComplete mutated its input")
	}
	if _, err := r.ForceComplete(s, ReasonCheckmate, White); !errors.Is(err, ErrInvalidResult) {
		t.Fatalf("engine-derived reason accepted: err=%v", err)
	}
	if bad, err := r.ForceComplete(s, ReasonForfeit, Color(9)); !errors.Is(err, ErrInvalidResult) || bad.Status != StatusActive {
		t.Fatalf("out-of-range winner accepted: err=%v status=%s", err, bad.Status)
	}
	if _, err := r.ForceComplete(done, ReasonForfeit, White); !errors.Is(err, ErrGameCompleted) {
		t.Fatalf("completed game re-completed: err=%v", err)
	}
	if _, err := r.Start(done); !errors.Is(err, ErrGameCompleted) {
		t.Fatalf("completed game restarted: err=%v", err)
	}
}

func TestDeterminism(t *testing.T) {
	r := NewRules()
	line := []string{"e2e4", "c7c5", "g1f3", "d7d6", "d2d4", "c5d4", "f3d4", "g8f6", "b1c3", "a7a6"}
	a := playLine(t, r, started(t, r), line...)
	b := playLine(t, r, started(t, r), line...)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same input produced different states")
	}
	if !reflect.DeepEqual(a.Captured.Black, []PieceKind{Pawn}) || !reflect.DeepEqual(a.Captured.White, []PieceKind{Pawn}) {
		t.Fatalf("captured = %+v", a.Captured)
	}
}

func TestKinglessBoardIsLenient(t *testing.T) {
	s := NewPosition(diagram(t,
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"P.......",
		"........",
	), White)
	if InCheck(s.Board, White) || KingInCheck(s).InCheck {
		t.Fatalf("kingless side reported in check")
	}
	next, err := NewRules().ApplyMove(s, mv(t, "a2a4"))
	if err != nil {
		t.Fatalf("a2a4: %v", err)
	}
	if next.Status == StatusCompleted && next.Result.Reason == ReasonCheckmate {
		t.Fatalf("kingless board produced a mate")
	}
}
