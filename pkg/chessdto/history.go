package chessdto

import "time"

// ChessGame is an archived finished game.
type ChessGame struct {
	GameID       string    `json:"game_id"`
	White        string    `json:"white"`
	Black        string    `json:"black"`
	WhiteID      string    `json:"white_id"`
	BlackID      string    `json:"black_id"`
	Result       string    `json:"result"`
	ResultMethod string    `json:"result_method"`
	MovesUCI     []string  `json:"moves_uci"`
	MovesSAN     []string  `json:"moves_san"`
	PGN          string    `json:"pgn"`
	FinalFEN     string    `json:"final_fen"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	DurationMS   int64     `json:"duration_ms"`
}
