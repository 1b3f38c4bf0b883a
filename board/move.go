package board

import (
	"fmt"
	"strings"
)

// A Move is packed into 32 bits: origin in bits 0-6, destination in 7-13,
// the reveal flag in bit 14 and an optional declared reveal type (type+1) in
// bits 15-17. The zero Move is the null move.
type Move uint32

const NullMove Move = 0

const (
	squareMask   = 0x7f
	toShift      = 7
	revealBit    = 1 << 14
	declareShift = 15
)

func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<toShift
}

// NewReveal builds a move that turns over the hidden piece on from.
func NewReveal(from, to Square) Move {
	return NewMove(from, to) | revealBit
}

func (m Move) From() Square {
	return Square(m & squareMask)
}

func (m Move) To() Square {
	return Square((m >> toShift) & squareMask)
}

func (m Move) IsReveal() bool {
	return m&revealBit != 0
}

// Declared is the identity a reveal move states for its piece, or NoType.
func (m Move) Declared() PieceType {
	d := (m >> declareShift) & typeMask
	if d == 0 {
		return NoType
	}
	return PieceType(d - 1)
}

// WithDeclared returns the reveal move with its identity fixed to t.
func (m Move) WithDeclared(t PieceType) Move {
	m &^= typeMask << declareShift
	if t < NoType {
		m |= Move(t+1) << declareShift
	}
	return m
}

// Base strips any declared identity.
func (m Move) Base() Move {
	return m &^ (typeMask << declareShift)
}

func (m Move) String() string {
	if m == NullMove {
		return "(null)"
	}
	var sb strings.Builder
	if m.IsReveal() {
		sb.WriteByte('+')
	}
	sb.WriteString(m.From().String())
	sb.WriteString(m.To().String())
	if d := m.Declared(); d != NoType {
		sb.WriteByte('=')
		sb.WriteString(d.String())
	}
	return sb.String()
}

// ParseMove reads "a0a1", "+a0a1" or "+a0a1=R".
func ParseMove(s string) (Move, error) {
	orig := s
	reveal := strings.HasPrefix(s, "+")
	s = strings.TrimPrefix(s, "+")
	declared := NoType
	if i := strings.IndexByte(s, '='); i >= 0 {
		if !reveal || len(s) != i+2 {
			return NullMove, fmt.Errorf("%w: %q", ErrBadMove, orig)
		}
		t, ok := TypeFromLetter(s[i+1])
		if !ok || t == King {
			return NullMove, fmt.Errorf("%w: %q", ErrBadMove, orig)
		}
		declared = t
		s = s[:i]
	}
	if len(s) != 4 {
		return NullMove, fmt.Errorf("%w: %q", ErrBadMove, orig)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q", ErrBadMove, orig)
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q", ErrBadMove, orig)
	}
	if reveal {
		return NewReveal(from, to).WithDeclared(declared), nil
	}
	return NewMove(from, to), nil
}
