package board

// Color is the side a piece belongs to. Red moves first and owns rows 0-4.
type Color uint8

const (
	Red Color = iota
	Black
)

func (c Color) Other() Color {
	return 1 - c
}

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// fenChar is the side-to-move letter used in FEN strings.
func (c Color) fenChar() byte {
	if c == Red {
		return 'r'
	}
	return 'b'
}

// PieceType is the identity of a piece.
type PieceType uint8

const (
	King PieceType = iota
	Advisor
	Elephant
	Horse
	Rook
	Cannon
	Pawn
	// NoType marks a piece whose identity is unknown.
	NoType
)

const NumTypes = 7

// Census is the number of pieces of each type one side starts with.
var Census = [NumTypes]int{1, 2, 2, 2, 2, 2, 5}

// PieceValues are material values on the centipawn scale.
var PieceValues = [NumTypes]int{100000, 200, 200, 400, 900, 450, 100}

// HiddenValue is the flat material value of a face-down piece.
const HiddenValue = 320

// Value returns the material value of t, or HiddenValue when t is NoType.
func (t PieceType) Value() int {
	if t >= NoType {
		return HiddenValue
	}
	return PieceValues[t]
}

var typeLetters = [NumTypes]byte{'k', 'a', 'e', 'h', 'r', 'c', 'p'}

func (t PieceType) String() string {
	if t >= NoType {
		return "?"
	}
	return string(typeLetters[t] - 'a' + 'A')
}

// TypeFromLetter parses a case-insensitive piece letter.
func TypeFromLetter(ch byte) (PieceType, bool) {
	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}
	for i, l := range typeLetters {
		if l == ch {
			return PieceType(i), true
		}
	}
	return NoType, false
}

// A Piece is packed in a byte. Bits 0-2 hold type+1 (0 for a hidden piece),
// bit 3 is set for Black and bit 4 for a face-down piece. Zero is empty.
type Piece uint8

const (
	Empty     Piece = 0
	typeMask        = 0x07
	blackBit        = 0x08
	hiddenBit       = 0x10
)

// NumPieceCodes bounds the byte values a Piece can take.
const NumPieceCodes = 32

func NewPiece(c Color, t PieceType) Piece {
	p := Piece(t + 1)
	if c == Black {
		p |= blackBit
	}
	return p
}

func NewHiddenPiece(c Color) Piece {
	p := Piece(hiddenBit)
	if c == Black {
		p |= blackBit
	}
	return p
}

func (p Piece) IsEmpty() bool {
	return p == Empty
}

func (p Piece) Color() Color {
	if p&blackBit != 0 {
		return Black
	}
	return Red
}

func (p Piece) Hidden() bool {
	return p&hiddenBit != 0
}

// Type returns the revealed identity, or NoType for hidden and empty pieces.
func (p Piece) Type() PieceType {
	t := p & typeMask
	if t == 0 {
		return NoType
	}
	return PieceType(t - 1)
}

// Letter is the FEN character of the piece.
func (p Piece) Letter() byte {
	var ch byte
	switch {
	case p.IsEmpty():
		return '.'
	case p.Hidden():
		ch = 'x'
	default:
		ch = typeLetters[p.Type()]
	}
	if p.Color() == Red {
		ch -= 'a' - 'A'
	}
	return ch
}

// CapturedPiece records a piece taken off the board. Type is NoType when the
// identity of a face-down piece was never learned.
type CapturedPiece struct {
	Type      PieceType
	WasHidden bool
}

func (c CapturedPiece) letter() byte {
	if c.Type >= NoType {
		return '?'
	}
	ch := typeLetters[c.Type]
	if !c.WasHidden {
		ch -= 'a' - 'A'
	}
	return ch
}
