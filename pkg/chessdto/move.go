package chessdto

// MoveSummary describes the outcome of one accepted move or promotion.
type MoveSummary struct {
	Game             *GameView `json:"game"`
	Move             string    `json:"move"`
	PromotionPending bool      `json:"promotion_pending"`
	Finished         bool      `json:"finished"`
	Text             string    `json:"text,omitempty"`
}
