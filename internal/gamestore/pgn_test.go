package gamestore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
)

func playedGame(t *testing.T, moves ...string) *Game {
	t.Helper()
	rules := chess.NewRules()
	st, err := rules.Start(chess.NewGame())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, text := range moves {
		mv, err := chess.ParseMove(text)
		if err != nil {
			t.Fatalf("parse %s: %v", text, err)
		}
		if st, err = rules.ApplyMove(st, mv); err != nil {
			t.Fatalf("apply %s: %v", text, err)
		}
	}
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return &Game{
		ID:        "g1",
		WhiteID:   "w",
		WhiteName: "Kim \"W\"",
		BlackID:   "b",
		BlackName: "Lee",
		State:     st,
		MovesUCI:  moves,
		CreatedAt: start,
		UpdatedAt: start.Add(90 * time.Second),
	}
}

func TestSANMoves(t *testing.T) {
	san, err := SANMoves([]string{"e2e4", "e7e5", "g1f3", "b8c6", "e1g1"})
	if err == nil {
		t.Fatalf("castling through a bishop should fail to replay")
	}
	if len(san) != 4 || san[0] != "e4" || san[2] != "Nf3" || san[3] != "Nc6" {
		t.Fatalf("unexpected partial SAN: %v", san)
	}

	san, err = SANMoves([]string{"e2e4", "d7d5", "e4d5"})
	if err != nil {
		t.Fatalf("SANMoves: %v", err)
	}
	if san[2] != "exd5" {
		t.Fatalf("capture SAN = %q", san[2])
	}
}

func TestSANMoves_TrailingUnresolvedPromotion(t *testing.T) {
	line := []string{"h2h4", "g7g5", "h4g5", "f8g7", "g5g6", "a7a6", "g6h7", "a6a5", "h7g8"}
	san, err := SANMoves(line)
	if err != nil {
		t.Fatalf("SANMoves: %v", err)
	}
	if len(san) != len(line) || san[len(san)-1] != "hxg8" {
		t.Fatalf("unexpected SAN: %v", san)
	}

	// only the last move may omit the piece letter
	if _, err := SANMoves(append(append([]string{}, line...), "h8g8")); err == nil {
		t.Fatalf("unresolved promotion in the middle of a game should not replay")
	}
	// a four-letter last move that is not a promotion is still validated
	if san, err := SANMoves([]string{"e2e4", "e7e5", "e1e3"}); err == nil || len(san) != 2 {
		t.Fatalf("illegal last move accepted: %v %v", san, err)
	}
}

func TestNewRecord_ForfeitDuringPendingPromotion(t *testing.T) {
	line := []string{"h2h4", "g7g5", "h4g5", "f8g7", "g5g6", "a7a6", "g6h7", "a6a5", "h7g8"}
	g := playedGame(t, line...)
	if !g.State.IsPromotionPending() {
		t.Fatalf("expected a pending promotion")
	}
	st, err := chess.NewRules().ForceComplete(g.State, chess.ReasonForfeit, chess.Black)
	if err != nil {
		t.Fatalf("ForceComplete: %v", err)
	}
	g.State = st

	rec, err := NewRecord(g)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if len(rec.MovesSAN) != len(line) || !strings.Contains(rec.PGN, "5. hxg8 0-1") {
		t.Fatalf("record SAN=%v pgn=%q", rec.MovesSAN, rec.PGN)
	}
	if !strings.HasPrefix(rec.FinalFEN, "rnbqk1Pr/") {
		t.Fatalf("final fen = %q", rec.FinalFEN)
	}
}

func TestNewRecord_Checkmate(t *testing.T) {
	g := playedGame(t, "f2f3", "e7e5", "g2g4", "d8h4")
	rec, err := NewRecord(g)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if rec.Result != "black" || rec.ResultMethod != "checkmate" {
		t.Fatalf("result = %s/%s", rec.Result, rec.ResultMethod)
	}
	if rec.Duration != 90*time.Second {
		t.Fatalf("duration = %v", rec.Duration)
	}
	if len(rec.MovesSAN) != 4 || !strings.HasPrefix(rec.MovesSAN[3], "Qh4") {
		t.Fatalf("SAN = %v", rec.MovesSAN)
	}
	for _, want := range []string{
		`[Date "2026.03.14"]`,
		`[White "Kim 'W'"]`,
		`[Result "0-1"]`,
		`[Termination "checkmate"]`,
		"1. f3 e5 2. g4 Qh4",
	} {
		if !strings.Contains(rec.PGN, want) {
			t.Fatalf("PGN missing %q:\n%s", want, rec.PGN)
		}
	}
	if !strings.HasSuffix(rec.PGN, "0-1") {
		t.Fatalf("PGN should end with the result: %q", rec.PGN)
	}
	if rec.FinalFEN != g.State.FEN() {
		t.Fatalf("final FEN mismatch")
	}
}

func TestNewRecord_ForfeitAndDraw(t *testing.T) {
	rules := chess.NewRules()
	g := playedGame(t, "e2e4")
	st, err := rules.ForceComplete(g.State, chess.ReasonForfeit, chess.Black)
	if err != nil {
		t.Fatalf("ForceComplete: %v", err)
	}
	g.State = st
	rec, err := NewRecord(g)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if rec.Result != "black" || rec.ResultMethod != "forfeit" || !strings.Contains(rec.PGN, `[Result "0-1"]`) {
		t.Fatalf("forfeit record = %s/%s", rec.Result, rec.ResultMethod)
	}

	g.State.Result = &chess.Result{Reason: chess.ReasonDraw, Draw: chess.DrawRepetition}
	rec, _ = NewRecord(g)
	if rec.Result != "draw" || rec.ResultMethod != "threefold_repetition" || !strings.HasSuffix(rec.PGN, "1/2-1/2") {
		t.Fatalf("draw record = %s/%s", rec.Result, rec.ResultMethod)
	}

	if _, err := NewRecord(playedGame(t, "e2e4")); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
}

func TestBuildPGN_NoMoves(t *testing.T) {
	pgn := BuildPGN(&domain.ChessGame{WhiteName: "a", BlackName: "b", Result: "white", EndedAt: time.Now()})
	if !strings.HasSuffix(pgn, "\n1-0") {
		t.Fatalf("unexpected movetext: %q", pgn)
	}
	if BuildPGN(nil) != "" {
		t.Fatalf("nil record should render empty")
	}
}

func TestMemoryArchive(t *testing.T) {
	a := NewMemoryArchive()
	ctx := context.Background()
	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		rec := &domain.ChessGame{GameID: id, WhiteID: "u1", BlackID: "u" + id, EndedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := a.SaveResult(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	// re-saving must not duplicate the index entry
	if err := a.SaveResult(ctx, &domain.ChessGame{GameID: "a", WhiteID: "u1", BlackID: "ua", EndedAt: base, PGN: "x"}); err != nil {
		t.Fatalf("resave: %v", err)
	}

	recent, err := a.RecentByUser(ctx, "u1", 2)
	if err != nil || len(recent) != 2 || recent[0].GameID != "c" || recent[1].GameID != "b" {
		t.Fatalf("recent = %v %+v", err, recent)
	}
	all, _ := a.RecentByUser(ctx, "u1", 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	got, err := a.GetResult(ctx, "a")
	if err != nil || got.PGN != "x" {
		t.Fatalf("get = %v %+v", err, got)
	}
	if _, err := a.GetResult(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
