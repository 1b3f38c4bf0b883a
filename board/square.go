package board

import "fmt"

const (
	NumRows    = 10
	NumCols    = 9
	NumSquares = NumRows * NumCols
)

// A Square indexes the board as row*9+col. Row 0 is Red's back rank.
type Square uint8

const NoSquare Square = 255

func SquareAt(row, col int) Square {
	return Square(row*NumCols + col)
}

func (s Square) Row() int {
	return int(s) / NumCols
}

func (s Square) Col() int {
	return int(s) % NumCols
}

func (s Square) String() string {
	if s >= NumSquares {
		return "--"
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col(), s.Row())
}

// ParseSquare reads a square such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'i' || s[1] < '0' || s[1] > '9' {
		return NoSquare, fmt.Errorf("bad square %q", s)
	}
	return SquareAt(int(s[1]-'0'), int(s[0]-'a')), nil
}

// offset returns the square dr rows and dc columns away, if on the board.
func (s Square) offset(dr, dc int) (Square, bool) {
	r, c := s.Row()+dr, s.Col()+dc
	if r < 0 || r >= NumRows || c < 0 || c >= NumCols {
		return NoSquare, false
	}
	return SquareAt(r, c), true
}

var startTypes [NumSquares]PieceType

func init() {
	for i := range startTypes {
		startTypes[i] = NoType
	}
	back := [NumCols]PieceType{Rook, Horse, Elephant, Advisor, King, Advisor, Elephant, Horse, Rook}
	for col, t := range back {
		startTypes[SquareAt(0, col)] = t
		startTypes[SquareAt(9, col)] = t
	}
	for _, col := range []int{1, 7} {
		startTypes[SquareAt(2, col)] = Cannon
		startTypes[SquareAt(7, col)] = Cannon
	}
	for col := 0; col < NumCols; col += 2 {
		startTypes[SquareAt(3, col)] = Pawn
		startTypes[SquareAt(6, col)] = Pawn
	}
}

// StartType is the piece type that begins the game on s, or NoType. A hidden
// piece moves as the start type of the square it stands on.
func StartType(s Square) PieceType {
	if s >= NumSquares {
		return NoType
	}
	return startTypes[s]
}

// isHomeStart reports whether s is one of c's starting squares.
func isHomeStart(s Square, c Color) bool {
	return StartType(s) != NoType && onOwnSide(s, c)
}

func onOwnSide(s Square, c Color) bool {
	if c == Red {
		return s.Row() <= 4
	}
	return s.Row() >= 5
}

func inPalace(s Square, c Color) bool {
	col := s.Col()
	if col < 3 || col > 5 {
		return false
	}
	if c == Red {
		return s.Row() <= 2
	}
	return s.Row() >= 7
}

func crossedRiver(s Square, c Color) bool {
	return !onOwnSide(s, c)
}
