package match

import (
	"errors"
	"strings"
)

// ColorChoice is the seat a game creator asks for.
type ColorChoice string

const (
	ColorWhite  ColorChoice = "white"
	ColorBlack  ColorChoice = "black"
	ColorRandom ColorChoice = "random"
)

// ParseColorChoice accepts white/w, black/b and random (or empty).
func ParseColorChoice(s string) (ColorChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return ColorWhite, nil
	case "black", "b":
		return ColorBlack, nil
	case "", "random", "r":
		return ColorRandom, nil
	default:
		return "", ErrInvalidArgs
	}
}

var (
	ErrInvalidArgs    = errors.New("invalid arguments")
	ErrNotParticipant = errors.New("user is not seated in this game")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrSeatTaken      = errors.New("both seats are taken")
	ErrAlreadySeated  = errors.New("user already seated")
	ErrBadMove        = errors.New("unreadable move")
	ErrCannotCancel   = errors.New("only waiting games can be cancelled")
)
