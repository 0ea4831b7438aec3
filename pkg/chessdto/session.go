package chessdto

import "time"

type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// CapturedPieces lists piece kinds taken by each side.
type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

type PlayerView struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type ResultView struct {
	Winner string `json:"winner,omitempty"`
	Loser  string `json:"loser,omitempty"`
	Reason string `json:"reason"`
	Draw   string `json:"draw,omitempty"`
}

// GameView is the public snapshot of a live game.
type GameView struct {
	ID               string         `json:"id"`
	White            PlayerView     `json:"white"`
	Black            PlayerView     `json:"black"`
	Status           string         `json:"status"`
	Turn             string         `json:"turn"`
	FEN              string         `json:"fen"`
	Board            []string       `json:"board"`
	MovesUCI         []string       `json:"moves_uci"`
	MoveCount        int            `json:"move_count"`
	HalfMoveClock    int            `json:"half_move_clock"`
	Castling         string         `json:"castling"`
	EnPassant        string         `json:"en_passant,omitempty"`
	Check            bool           `json:"check"`
	Checkers         []string       `json:"checkers,omitempty"`
	Checkmate        bool           `json:"checkmate"`
	Stalemate        bool           `json:"stalemate"`
	PendingPromotion string         `json:"pending_promotion,omitempty"`
	Material         MaterialScore  `json:"material"`
	Captured         CapturedPieces `json:"captured"`
	Result           *ResultView    `json:"result,omitempty"`
	Outcome          string         `json:"outcome,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
