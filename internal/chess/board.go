package chess

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Board is an 8x8 grid indexed [row][col]. It is a value type: assigning or passing a Board
// copies it, so a Board never aliases another.
type Board [8][8]Piece

var backRankOrder = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StartingBoard returns the standard initial position.
func StartingBoard() Board {
	var b Board
	for col, kind := range backRankOrder {
		b[0][col] = Piece{Kind: kind, Color: White}
		b[1][col] = Piece{Kind: Pawn, Color: White}
		b[6][col] = Piece{Kind: Pawn, Color: Black}
		b[7][col] = Piece{Kind: kind, Color: Black}
	}
	return b
}

// PieceAt returns the piece on sq and whether the square is occupied.
// Off-board squares are reported as empty.
func (b Board) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	p := b[sq.Row][sq.Col]
	return p, !p.IsEmpty()
}

// Set returns a copy of b with sq holding p (the zero Piece clears the square).
func (b Board) Set(sq Square, p Piece) Board {
	if sq.Valid() {
		b[sq.Row][sq.Col] = p
	}
	return b
}

// IsOccupied reports whether any piece, of either color, stands on sq.
func (b Board) IsOccupied(sq Square) bool {
	_, ok := b.PieceAt(sq)
	return ok
}

// IsOpponent reports whether sq holds a piece of the color opposing c.
func (b Board) IsOpponent(sq Square, c Color) bool {
	p, ok := b.PieceAt(sq)
	return ok && p.Color != c
}

// FindKing scans all 64 squares for c's king. ok is false on a kingless board.
func (b Board) FindKing(c Color) (Square, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b[row][col]
			if p.Kind == King && p.Color == c {
				return Sq(row, col), true
			}
		}
	}
	return Square{}, false
}

// Squares returns the occupied squares of color c in row-major order.
func (b Board) Squares(c Color) []Square {
	var out []Square
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b[row][col]
			if !p.IsEmpty() && p.Color == c {
				out = append(out, Sq(row, col))
			}
		}
	}
	return out
}

// Rows renders the board as eight strings, row 0 first, one symbol per column.
func (b Board) Rows() []string {
	rows := make([]string, 8)
	for row := 0; row < 8; row++ {
		var sb strings.Builder
		for col := 0; col < 8; col++ {
			sb.WriteByte(b[row][col].Symbol())
		}
		rows[row] = sb.String()
	}
	return rows
}

// Key is a comparable serialization of piece placement.
func (b Board) Key() string { return strings.Join(b.Rows(), "/") }

// ParseBoard is the inverse of Rows.
func ParseBoard(rows []string) (Board, error) {
	var b Board
	if len(rows) != 8 {
		return b, fmt.Errorf("board needs 8 rows, got %d", len(rows))
	}
	for row, line := range rows {
		if len(line) != 8 {
			return b, fmt.Errorf("row %d needs 8 squares, got %d", row, len(line))
		}
		for col := 0; col < 8; col++ {
			p, err := pieceFromSymbol(line[col])
			if err != nil {
				return b, fmt.Errorf("row %d col %d: %w", row, col, err)
			}
			b[row][col] = p
		}
	}
	return b, nil
}

func (b Board) MarshalJSON() ([]byte, error) { return json.Marshal(b.Rows()) }

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	parsed, err := ParseBoard(rows)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// String draws the board from Black's side down to White's, for debugging.
func (b Board) String() string {
	rows := b.Rows()
	var sb strings.Builder
	for row := 7; row >= 0; row-- {
		sb.WriteString(rows[row])
		sb.WriteByte('\n')
	}
	return sb.String()
}
