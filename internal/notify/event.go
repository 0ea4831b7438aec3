package notify

import (
	"context"
	"time"

	"github.com/park285/cheese-chess/internal/chess"
)

type Kind string

const (
	KindCreated          Kind = "created"
	KindJoined           Kind = "joined"
	KindMove             Kind = "move"
	KindPromotionPending Kind = "promotion_pending"
	KindCompleted        Kind = "completed"
	KindCancelled        Kind = "cancelled"
)

// Event is one observable change of a live game.
type Event struct {
	Kind    Kind          `json:"kind"`
	GameID  string        `json:"game_id"`
	Actor   string        `json:"actor,omitempty"`
	Move    string        `json:"move,omitempty"`
	White   string        `json:"white,omitempty"`
	Black   string        `json:"black,omitempty"`
	Status  chess.Status  `json:"status"`
	Turn    chess.Color   `json:"turn"`
	FEN     string        `json:"fen"`
	Check   bool          `json:"check"`
	Result  *chess.Result `json:"result,omitempty"`
	Text    string        `json:"text,omitempty"`
	At      time.Time     `json:"at"`
	Moves   int           `json:"moves"`
	Pending string        `json:"pending_promotion,omitempty"`
}

// Publisher delivers events to one destination.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// FromState fills the state-derived fields of an event.
func FromState(kind Kind, gameID string, s chess.State) Event {
	ev := Event{
		Kind:   kind,
		GameID: gameID,
		Status: s.Status,
		Turn:   s.Turn,
		FEN:    s.FEN(),
		Check:  s.Check,
		Moves:  s.MoveCount,
		At:     time.Now().UTC(),
	}
	if s.Result != nil {
		r := *s.Result
		ev.Result = &r
	}
	if s.PendingPromotion != nil {
		ev.Pending = s.PendingPromotion.String()
	}
	return ev
}
