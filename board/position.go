package board

import (
	"errors"
	"strings"
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrBadMove         = errors.New("malformed move")
	ErrIllegalMove     = errors.New("illegal move")
)

// GameResult is the outcome of a position or a finished game.
type GameResult uint8

const (
	Ongoing GameResult = iota
	RedWin
	BlackWin
	Draw
)

func (r GameResult) String() string {
	switch r {
	case RedWin:
		return "red-win"
	case BlackWin:
		return "black-win"
	case Draw:
		return "draw"
	}
	return "ongoing"
}

// WinFor is the result in which c wins.
func WinFor(c Color) GameResult {
	if c == Red {
		return RedWin
	}
	return BlackWin
}

// Position is a mutable game state. Counts of revealed, hidden and captured
// pieces are kept in step with the squares by Apply and UndoMove.
type Position struct {
	squares  [NumSquares]Piece
	turn     Color
	viewer   Color
	captured [2][]CapturedPiece

	revealed [2][NumTypes]int8
	// capCount[c][NoType] counts captured pieces of unknown identity.
	capCount [2][NumTypes + 1]int8
	hidden   [2]int8
	kings    [2]Square
}

// Undo is the token needed to take back one applied move.
type Undo struct {
	m          Move
	moved      Piece
	captured   Piece
	capturedAs PieceType
}

func (u Undo) Move() Move {
	return u.m
}

// Moved is the piece as it stood on the origin square before the move.
func (u Undo) Moved() Piece {
	return u.moved
}

func (u Undo) Captured() Piece {
	return u.captured
}

// CapturedAs is the identity recorded for a captured face-down piece.
func (u Undo) CapturedAs() PieceType {
	return u.capturedAs
}

func newEmptyPosition() *Position {
	return &Position{kings: [2]Square{NoSquare, NoSquare}}
}

// NewStartingPosition returns the opening layout with Red to move.
func NewStartingPosition() *Position {
	pos, err := ParseFEN(StartingFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

func (p *Position) Copy() *Position {
	cp := *p
	for c := range p.captured {
		cp.captured[c] = append([]CapturedPiece(nil), p.captured[c]...)
	}
	return &cp
}

func (p *Position) PieceAt(s Square) Piece {
	return p.squares[s]
}

func (p *Position) Turn() Color {
	return p.turn
}

func (p *Position) Viewer() Color {
	return p.viewer
}

func (p *Position) KingSquare(c Color) Square {
	return p.kings[c]
}

// Captured lists the pieces of color c that have been taken.
func (p *Position) Captured(c Color) []CapturedPiece {
	return p.captured[c]
}

// Revealed counts face-up pieces of type t belonging to c on the board.
func (p *Position) Revealed(c Color, t PieceType) int {
	return int(p.revealed[c][t])
}

// Hidden counts c's face-down pieces on the board.
func (p *Position) Hidden(c Color) int {
	return int(p.hidden[c])
}

// CapturedKnown counts captured pieces of c whose identity t is known.
func (p *Position) CapturedKnown(c Color, t PieceType) int {
	return int(p.capCount[c][t])
}

// CapturedUnknown counts captured face-down pieces of c never identified.
func (p *Position) CapturedUnknown(c Color) int {
	return int(p.capCount[c][NoType])
}

// MovementType is how the piece on s moves: its identity when revealed,
// the start type of s when hidden.
func (p *Position) MovementType(s Square) PieceType {
	pc := p.squares[s]
	if pc.Hidden() {
		return startTypes[s]
	}
	return pc.Type()
}

func (p *Position) put(s Square, pc Piece) {
	p.squares[s] = pc
	if pc.IsEmpty() {
		return
	}
	c := pc.Color()
	if pc.Hidden() {
		p.hidden[c]++
		return
	}
	t := pc.Type()
	p.revealed[c][t]++
	if t == King {
		p.kings[c] = s
	}
}

func (p *Position) addCaptured(c Color, cp CapturedPiece) {
	p.captured[c] = append(p.captured[c], cp)
	p.capCount[c][cp.Type]++
}

// Apply plays m. A face-down mover is revealed as m's declared type, or as
// the start type of its square when none is declared (or the first type
// its side has left, once the start type is used up). A captured face-down
// piece is recorded with unknown identity.
func (p *Position) Apply(m Move) Undo {
	return p.apply(m, m.Declared(), NoType)
}

// ApplyAs plays reveal move m with the mover turned over as t.
func (p *Position) ApplyAs(m Move, t PieceType) Undo {
	return p.apply(m, t, NoType)
}

// ApplyKnown plays m when the true identities are known, as in a real game:
// the mover is revealed as reveal and a captured face-down piece is recorded
// as capturedAs.
func (p *Position) ApplyKnown(m Move, reveal, capturedAs PieceType) Undo {
	return p.apply(m, reveal, capturedAs)
}

func (p *Position) apply(m Move, reveal, capturedAs PieceType) Undo {
	from, to := m.From(), m.To()
	moved := p.squares[from]
	target := p.squares[to]
	c := moved.Color()
	opp := c.Other()
	u := Undo{m: m, moved: moved, captured: target, capturedAs: NoType}

	placed := moved
	if moved.Hidden() {
		if reveal >= NoType {
			reveal = p.defaultReveal(c, from)
		}
		placed = NewPiece(c, reveal)
		p.hidden[c]--
		p.revealed[c][reveal]++
	}

	if !target.IsEmpty() {
		if target.Hidden() {
			p.hidden[opp]--
			u.capturedAs = capturedAs
			p.addCaptured(opp, CapturedPiece{Type: capturedAs, WasHidden: true})
		} else {
			t := target.Type()
			p.revealed[opp][t]--
			p.addCaptured(opp, CapturedPiece{Type: t})
			if t == King {
				p.kings[opp] = NoSquare
			}
		}
	}

	p.squares[from] = Empty
	p.squares[to] = placed
	if placed.Type() == King {
		p.kings[c] = to
	}
	p.turn = opp
	return u
}

// canReveal reports whether one of c's face-down pieces could still be t.
func (p *Position) canReveal(c Color, t PieceType) bool {
	return t < NoType && t != King && int(p.revealed[c][t])+int(p.capCount[c][t]) < Census[t]
}

// defaultReveal is the start type of from, or the first type c has left
// when every piece of that type is already shown or captured.
func (p *Position) defaultReveal(c Color, from Square) PieceType {
	if t := startTypes[from]; p.canReveal(c, t) {
		return t
	}
	for t := Advisor; t < NoType; t++ {
		if p.canReveal(c, t) {
			return t
		}
	}
	return startTypes[from]
}

// UndoMove takes back the move recorded in u.
func (p *Position) UndoMove(u Undo) {
	from, to := u.m.From(), u.m.To()
	placed := p.squares[to]
	c := u.moved.Color()
	opp := c.Other()

	if u.moved.Hidden() {
		p.revealed[c][placed.Type()]--
		p.hidden[c]++
	}
	if placed.Type() == King {
		p.kings[c] = from
	}

	if !u.captured.IsEmpty() {
		n := len(p.captured[opp]) - 1
		cp := p.captured[opp][n]
		p.captured[opp] = p.captured[opp][:n]
		p.capCount[opp][cp.Type]--
		if u.captured.Hidden() {
			p.hidden[opp]++
		} else {
			t := u.captured.Type()
			p.revealed[opp][t]++
			if t == King {
				p.kings[opp] = to
			}
		}
	}

	p.squares[to] = u.captured
	p.squares[from] = u.moved
	p.turn = c
}

// InCheck reports whether c's king is attacked. A side without a king is
// treated as in check.
func (p *Position) InCheck(c Color) bool {
	k := p.kings[c]
	if k == NoSquare {
		return true
	}
	return p.attacked(k, c.Other())
}

// Result classifies the position for the side to move. A side with no legal
// moves has lost, whether or not it is in check.
func (p *Position) Result() GameResult {
	if p.kings[Red] == NoSquare {
		return BlackWin
	}
	if p.kings[Black] == NoSquare {
		return RedWin
	}
	if !p.HasLegalMove() {
		return WinFor(p.turn.Other())
	}
	return Ongoing
}

// BoardString is the board part of the FEN, used to detect repetitions.
func (p *Position) BoardString() string {
	var sb strings.Builder
	p.writeBoard(&sb)
	return sb.String()
}

// String draws the board with row 9 at the top.
func (p *Position) String() string {
	var sb strings.Builder
	for row := NumRows - 1; row >= 0; row-- {
		sb.WriteByte(byte('0' + row))
		sb.WriteByte(' ')
		for col := 0; col < NumCols; col++ {
			sb.WriteByte(p.squares[SquareAt(row, col)].Letter())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h i\n")
	return sb.String()
}
