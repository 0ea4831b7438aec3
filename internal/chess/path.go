package chess

// RayClear reports whether every square strictly between from and to is empty. from and to
// must share a row, a column or a diagonal; only the sliding pieces use it.
func RayClear(b Board, from, to Square) bool {
	dRow, dCol := to.Row-from.Row, to.Col-from.Col
	if dRow == 0 && dCol == 0 {
		return true
	}
	if dRow != 0 && dCol != 0 && abs(dRow) != abs(dCol) {
		return false
	}
	dr, dc := sign(dRow), sign(dCol)
	r, c := from.Row+dr, from.Col+dc
	for r != to.Row || c != to.Col {
		if !Sq(r, c).Valid() {
			return false
		}
		if b.IsOccupied(Sq(r, c)) {
			return false
		}
		r += dr
		c += dc
	}
	return true
}
