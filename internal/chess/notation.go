package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// String returns the algebraic name of the square ("e2").
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return string([]byte{byte('a' + s.Col), byte('1' + s.Row)})
}

// ParseSquare reads an algebraic square name ("e2").
func ParseSquare(s string) (Square, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if len(v) != 2 || v[0] < 'a' || v[0] > 'h' || v[1] < '1' || v[1] > '8' {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return Sq(int(v[1]-'1'), int(v[0]-'a')), nil
}

// String renders the move in UCI long algebraic form ("e2e4", "e7e8q").
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += string(m.Promotion.Letter())
	}
	return s
}

// ParseMove reads UCI long algebraic text: four characters plus an optional promotion
// letter.
func ParseMove(s string) (Move, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if len(v) != 4 && len(v) != 5 {
		return Move{}, fmt.Errorf("invalid move text %q", s)
	}
	from, err := ParseSquare(v[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(v[2:4])
	if err != nil {
		return Move{}, err
	}
	mv := Move{From: from, To: to}
	if len(v) == 5 {
		k, err := ParsePieceKind(v[4:])
		if err != nil || !k.IsPromotionChoice() {
			return Move{}, fmt.Errorf("invalid promotion in %q", s)
		}
		mv.Promotion = k
	}
	return mv, nil
}

// FEN exports the state in Forsyth-Edwards notation. The full-move number is derived from
// the ply count, so it is only meaningful for games that started from the initial position.
func (s State) FEN() string {
	var sb strings.Builder
	for row := 7; row >= 0; row-- {
		empty := 0
		for col := 0; col < 8; col++ {
			p := s.Board[row][col]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	sb.WriteByte(s.Turn.String()[0])
	sb.WriteByte(' ')
	sb.WriteString(s.Castling.FEN())
	sb.WriteByte(' ')
	if s.EnPassant != nil {
		sb.WriteString(s.EnPassant.String())
	} else {
		sb.WriteByte('-')
	}
	fmt.Fprintf(&sb, " %d %d", s.HalfMoveClock, s.MoveCount/2+1)
	return sb.String()
}
