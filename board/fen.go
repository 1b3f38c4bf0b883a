package board

import (
	"fmt"
	"strings"
)

// StartingFEN is the opening position: every piece but the kings face-down.
const StartingFEN = "xxxxkxxxx/9/1x5x1/x1x1x1x1x/9/9/X1X1X1X1X/1X5X1/9/XXXXKXXXX -:- r r"

// ParseFEN reads "<board> <captured red:black> <turn> <viewer>". Board rows
// run from row 9 down to row 0; X/x is a face-down piece. In the captured
// section an uppercase letter is a piece taken face-up, a lowercase letter a
// piece taken face-down whose identity is known, and '?' one never revealed.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: expected 4 fields, got %d", ErrInvalidPosition, len(fields))
	}
	p := newEmptyPosition()
	if err := p.parseBoard(fields[0]); err != nil {
		return nil, err
	}
	if err := p.parseCaptured(fields[1]); err != nil {
		return nil, err
	}
	var ok bool
	if p.turn, ok = parseColor(fields[2]); !ok {
		return nil, fmt.Errorf("%w: bad side to move %q", ErrInvalidPosition, fields[2])
	}
	if p.viewer, ok = parseColor(fields[3]); !ok {
		return nil, fmt.Errorf("%w: bad viewer %q", ErrInvalidPosition, fields[3])
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func parseColor(s string) (Color, bool) {
	switch s {
	case "r", "w":
		return Red, true
	case "b":
		return Black, true
	}
	return Red, false
}

func (p *Position) parseBoard(s string) error {
	rows := strings.Split(s, "/")
	if len(rows) != NumRows {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidPosition, NumRows, len(rows))
	}
	for i, rowStr := range rows {
		row := NumRows - 1 - i
		col := 0
		for j := 0; j < len(rowStr); j++ {
			ch := rowStr[j]
			if ch >= '1' && ch <= '9' {
				col += int(ch - '0')
				continue
			}
			if col >= NumCols {
				return fmt.Errorf("%w: row %d overflows", ErrInvalidPosition, row)
			}
			c := Red
			if ch >= 'a' && ch <= 'z' {
				c = Black
			}
			sq := SquareAt(row, col)
			if ch == 'x' || ch == 'X' {
				if !isHomeStart(sq, c) || startTypes[sq] == King {
					return fmt.Errorf("%w: hidden piece on %v is not on a starting square", ErrInvalidPosition, sq)
				}
				p.put(sq, NewHiddenPiece(c))
			} else {
				t, ok := TypeFromLetter(ch)
				if !ok {
					return fmt.Errorf("%w: bad piece %q", ErrInvalidPosition, ch)
				}
				if t == King && p.kings[c] != NoSquare {
					return fmt.Errorf("%w: two %v kings", ErrInvalidPosition, c)
				}
				p.put(sq, NewPiece(c, t))
			}
			col++
		}
		if col != NumCols {
			return fmt.Errorf("%w: row %d has %d columns", ErrInvalidPosition, row, col)
		}
	}
	return nil
}

func (p *Position) parseCaptured(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return fmt.Errorf("%w: bad captured section %q", ErrInvalidPosition, s)
	}
	for c, part := range parts {
		if part == "-" {
			continue
		}
		for i := 0; i < len(part); i++ {
			ch := part[i]
			if ch == '?' {
				p.addCaptured(Color(c), CapturedPiece{Type: NoType, WasHidden: true})
				continue
			}
			t, ok := TypeFromLetter(ch)
			if !ok {
				return fmt.Errorf("%w: bad captured piece %q", ErrInvalidPosition, ch)
			}
			p.addCaptured(Color(c), CapturedPiece{Type: t, WasHidden: ch >= 'a' && ch <= 'z'})
		}
	}
	return nil
}

// Validate checks that the position could arise in a game: both kings
// accounted for, and no side holding more pieces of a kind than it starts with.
func (p *Position) Validate() error {
	for c := Red; c <= Black; c++ {
		if p.kings[c] == NoSquare && p.capCount[c][King] == 0 {
			return fmt.Errorf("%w: %v king missing", ErrInvalidPosition, c)
		}
		if k := p.kings[c]; k != NoSquare && !inPalace(k, c) {
			return fmt.Errorf("%w: %v king outside palace", ErrInvalidPosition, c)
		}
		total := int(p.hidden[c]) + int(p.capCount[c][NoType])
		for t := King; t < NoType; t++ {
			n := int(p.revealed[c][t]) + int(p.capCount[c][t])
			if n > Census[t] {
				return fmt.Errorf("%w: too many %v %v pieces", ErrInvalidPosition, c, t)
			}
			total += n
		}
		if total > 16 {
			return fmt.Errorf("%w: %v has %d pieces", ErrInvalidPosition, c, total)
		}
	}
	return nil
}

// FEN serializes the position in the format ParseFEN reads.
func (p *Position) FEN() string {
	var sb strings.Builder
	p.writeBoard(&sb)
	sb.WriteByte(' ')
	for c := Red; c <= Black; c++ {
		if c == Black {
			sb.WriteByte(':')
		}
		if len(p.captured[c]) == 0 {
			sb.WriteByte('-')
			continue
		}
		for _, cp := range p.captured[c] {
			sb.WriteByte(cp.letter())
		}
	}
	sb.WriteByte(' ')
	sb.WriteByte(p.turn.fenChar())
	sb.WriteByte(' ')
	sb.WriteByte(p.viewer.fenChar())
	return sb.String()
}

func (p *Position) writeBoard(sb *strings.Builder) {
	for row := NumRows - 1; row >= 0; row-- {
		empty := 0
		for col := 0; col < NumCols; col++ {
			pc := p.squares[SquareAt(row, col)]
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row > 0 {
			sb.WriteByte('/')
		}
	}
}

// Normalize sets the reveal flag of m to match the piece on its origin, so
// "e3e4" and "+e3e4" name the same move.
func (p *Position) Normalize(m Move) Move {
	hidden := p.squares[m.From()].Hidden()
	switch {
	case hidden && !m.IsReveal():
		return m | revealBit
	case !hidden && m.IsReveal():
		return NewMove(m.From(), m.To())
	}
	return m
}
