package chessdto

type CreateGameRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	// Color is white, black or random (default).
	Color string `json:"color,omitempty"`
}

type JoinRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// MoveRequest carries coordinate text (e2e4, e7e8q) or SAN (Nf3, O-O).
type MoveRequest struct {
	UserID string `json:"user_id"`
	Move   string `json:"move"`
}

type PromotionRequest struct {
	UserID string `json:"user_id"`
	Piece  string `json:"piece"`
}

type ResignRequest struct {
	UserID string `json:"user_id"`
}

type TimeoutRequest struct {
	Loser string `json:"loser"`
}

type CancelRequest struct {
	UserID string `json:"user_id"`
}

type GameResponse struct {
	Game *GameView `json:"game"`
}

type GamesResponse struct {
	Games []*GameView `json:"games"`
}

type MoveResponse struct {
	Summary *MoveSummary `json:"summary"`
}

type RecordResponse struct {
	Game *ChessGame `json:"game"`
}

type HistoryResponse struct {
	Games []*ChessGame `json:"games"`
}
