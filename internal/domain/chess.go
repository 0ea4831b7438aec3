package domain

import "time"

// ChessGame is the archived record of a finished game.
type ChessGame struct {
	GameID       string
	WhiteID      string
	WhiteName    string
	BlackID      string
	BlackName    string
	Result       string // white | black | draw
	ResultMethod string // checkmate, stalemate, fifty_move, threefold_repetition, insufficient_material, forfeit, timeout
	MovesUCI     []string
	MovesSAN     []string
	PGN          string
	FinalFEN     string
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}
