package chess

import (
	"fmt"
	"strings"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Forward is the row delta of a pawn step for the color.
func (c Color) Forward() int {
	if c == White {
		return 1
	}
	return -1
}

// BackRank is the row the color's pieces start on.
func (c Color) BackRank() int {
	if c == White {
		return 0
	}
	return 7
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseColor accepts "white"/"w" and "black"/"b" in any case.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return White, fmt.Errorf("unknown color %q", s)
	}
}

// PieceKind is the type of a piece. The zero value means "no piece".
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{NoKind: '.', Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k'}

var kindNames = [...]string{NoKind: "", Pawn: "pawn", Knight: "knight", Bishop: "bishop", Rook: "rook", Queen: "queen", King: "king"}

func (k PieceKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Letter is the lower-case algebraic letter of the kind ('p', 'n', ...).
func (k PieceKind) Letter() byte {
	if int(k) < len(kindLetters) {
		return kindLetters[k]
	}
	return '?'
}

func (k PieceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *PieceKind) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = NoKind
		return nil
	}
	v, err := ParsePieceKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParsePieceKind accepts full names ("queen") or letters ("q", "Q").
func ParsePieceKind(s string) (PieceKind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for k := Pawn; k <= King; k++ {
		if v == kindNames[k] || (len(v) == 1 && v[0] == kindLetters[k]) {
			return k, nil
		}
	}
	return NoKind, fmt.Errorf("unknown piece kind %q", s)
}

// IsPromotionChoice reports whether a pawn may promote to k.
func (k PieceKind) IsPromotionChoice() bool {
	switch k {
	case Queen, Rook, Bishop, Knight:
		return true
	default:
		return false
	}
}

// Piece is a colored piece. The zero value is an empty square.
type Piece struct {
	Kind  PieceKind
	Color Color
}

// NewPiece is a convenience constructor.
func NewPiece(c Color, k PieceKind) Piece { return Piece{Kind: k, Color: c} }

// IsEmpty reports whether p represents an empty square.
func (p Piece) IsEmpty() bool { return p.Kind == NoKind }

// Symbol returns the FEN-style letter: upper case for White, lower case for Black,
// '.' for an empty square.
func (p Piece) Symbol() byte {
	if p.IsEmpty() {
		return '.'
	}
	l := p.Kind.Letter()
	if p.Color == White {
		return l - ('a' - 'A')
	}
	return l
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Color.String() + " " + p.Kind.String()
}

// pieceFromSymbol is the inverse of Symbol.
func pieceFromSymbol(b byte) (Piece, error) {
	if b == '.' {
		return Piece{}, nil
	}
	color := Black
	lower := b
	if b >= 'A' && b <= 'Z' {
		color = White
		lower = b + ('a' - 'A')
	}
	for k := Pawn; k <= King; k++ {
		if kindLetters[k] == lower {
			return Piece{Kind: k, Color: color}, nil
		}
	}
	return Piece{}, fmt.Errorf("invalid piece symbol %q", b)
}

// Square is a board coordinate. Row 0 is White's back rank, column 0 is the a-file.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Sq is shorthand for Square{Row: row, Col: col}.
func Sq(row, col int) Square { return Square{Row: row, Col: col} }

// Valid reports whether the square lies on the board.
func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

// Move is a request to move the piece on From to To. Promotion is optional.
type Move struct {
	From      Square    `json:"from"`
	To        Square    `json:"to"`
	Promotion PieceKind `json:"promotion,omitempty"`
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
