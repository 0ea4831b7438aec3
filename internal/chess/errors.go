package chess

import (
	"errors"
	"fmt"
)

// Rejection kinds. Every rejection returned by this package wraps exactly one of them, so
// callers can branch with errors.Is.
var (
	ErrIllegalMove      = errors.New("illegal move")
	ErrNoPieceAtOrigin  = errors.New("no piece at origin")
	ErrPromotionPending = errors.New("promotion pending")
	ErrInvalidPromotion = errors.New("invalid promotion choice")
	ErrGameCompleted    = errors.New("game already completed")
	ErrGameNotStarted   = errors.New("game not started")
	ErrInvalidResult    = errors.New("invalid result")
)

// MoveError describes a rejected request.
type MoveError struct {
	Kind   error
	Move   Move
	Reason string
}

func (e *MoveError) Error() string {
	if e.Move == (Move{}) {
		if e.Reason == "" {
			return e.Kind.Error()
		}
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	}
	if e.Reason == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Move)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Move, e.Reason)
}

func (e *MoveError) Unwrap() error { return e.Kind }

func reject(kind error, mv Move, reason string) error {
	return &MoveError{Kind: kind, Move: mv, Reason: reason}
}
