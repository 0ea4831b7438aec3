package api

import (
	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/gamestore"
	"github.com/park285/cheese-chess/internal/match"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

var pieceValue = map[chess.PieceKind]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
}

// ToGameView converts a live game into its wire snapshot. Board rows run from rank 8 down to
// rank 1.
func ToGameView(g *gamestore.Game) *chessdto.GameView {
	if g == nil {
		return nil
	}
	s := g.State
	rows := s.Board.Rows()
	board := make([]string, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		board = append(board, rows[i])
	}

	v := &chessdto.GameView{
		ID:            g.ID,
		White:         chessdto.PlayerView{ID: g.WhiteID, Name: g.WhiteName},
		Black:         chessdto.PlayerView{ID: g.BlackID, Name: g.BlackName},
		Status:        string(s.Status),
		Turn:          s.Turn.String(),
		FEN:           s.FEN(),
		Board:         board,
		MovesUCI:      append([]string{}, g.MovesUCI...),
		MoveCount:     s.MoveCount,
		HalfMoveClock: s.HalfMoveClock,
		Castling:      s.Castling.FEN(),
		Check:         s.Check,
		Checkmate:     s.Checkmate,
		Stalemate:     s.Stalemate,
		Material:      material(s.Board),
		Captured: chessdto.CapturedPieces{
			White: kindNames(s.Captured.White),
			Black: kindNames(s.Captured.Black),
		},
		Outcome:   match.Outcome(g),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
	if s.EnPassant != nil {
		v.EnPassant = s.EnPassant.String()
	}
	if s.PendingPromotion != nil {
		v.PendingPromotion = s.PendingPromotion.String()
	}
	for _, sq := range s.Checkers {
		v.Checkers = append(v.Checkers, sq.String())
	}
	if r := s.Result; r != nil {
		rv := &chessdto.ResultView{Reason: string(r.Reason), Draw: string(r.Draw)}
		if r.Winner != nil {
			rv.Winner = r.Winner.String()
		}
		if r.Loser != nil {
			rv.Loser = r.Loser.String()
		}
		v.Result = rv
	}
	return v
}

func ToGameViews(list []*gamestore.Game) []*chessdto.GameView {
	out := make([]*chessdto.GameView, 0, len(list))
	for _, g := range list {
		out = append(out, ToGameView(g))
	}
	return out
}

// ToDTOGame converts an archived record.
func ToDTOGame(rec *domain.ChessGame) *chessdto.ChessGame {
	if rec == nil {
		return nil
	}
	return &chessdto.ChessGame{
		GameID:       rec.GameID,
		White:        rec.WhiteName,
		Black:        rec.BlackName,
		WhiteID:      rec.WhiteID,
		BlackID:      rec.BlackID,
		Result:       rec.Result,
		ResultMethod: rec.ResultMethod,
		MovesUCI:     append([]string{}, rec.MovesUCI...),
		MovesSAN:     append([]string{}, rec.MovesSAN...),
		PGN:          rec.PGN,
		FinalFEN:     rec.FinalFEN,
		StartedAt:    rec.StartedAt,
		EndedAt:      rec.EndedAt,
		DurationMS:   rec.Duration.Milliseconds(),
	}
}

func ToDTOGames(list []*domain.ChessGame) []*chessdto.ChessGame {
	out := make([]*chessdto.ChessGame, 0, len(list))
	for _, rec := range list {
		out = append(out, ToDTOGame(rec))
	}
	return out
}

// material sums the non-king material each side still has on the board.
func material(b chess.Board) chessdto.MaterialScore {
	var m chessdto.MaterialScore
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b[row][col]
			if p.IsEmpty() {
				continue
			}
			if p.Color == chess.White {
				m.White += pieceValue[p.Kind]
			} else {
				m.Black += pieceValue[p.Kind]
			}
		}
	}
	return m
}

func kindNames(list []chess.PieceKind) []string {
	out := make([]string, 0, len(list))
	for _, k := range list {
		out = append(out, k.String())
	}
	return out
}
