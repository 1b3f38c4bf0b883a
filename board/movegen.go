package board

type offset struct{ dr, dc int }

var (
	orthogonal = [4]offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal   = [4]offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// horse jumps paired with the leg square that blocks them.
var horseJumps = [8]struct{ to, leg offset }{
	{offset{2, 1}, offset{1, 0}}, {offset{2, -1}, offset{1, 0}},
	{offset{-2, 1}, offset{-1, 0}}, {offset{-2, -1}, offset{-1, 0}},
	{offset{1, 2}, offset{0, 1}}, {offset{1, -2}, offset{0, -1}},
	{offset{-1, 2}, offset{0, 1}}, {offset{-1, -2}, offset{0, -1}},
}

func pawnForward(c Color) int {
	if c == Red {
		return 1
	}
	return -1
}

// LegalMoves appends every legal move for the side to move to dst.
func (p *Position) LegalMoves(dst []Move) []Move {
	return p.legal(dst, false)
}

// LegalCaptures appends the legal capturing moves for the side to move.
func (p *Position) LegalCaptures(dst []Move) []Move {
	return p.legal(dst, true)
}

// HasLegalMove is a cheaper test than len(LegalMoves(nil)) > 0.
func (p *Position) HasLegalMove() bool {
	var buf [128]Move
	pseudo := p.pseudoMoves(p.turn, false, buf[:0])
	for _, m := range pseudo {
		if p.isLegal(m) {
			return true
		}
	}
	return false
}

// Captures appends c's pseudo-legal captures, ignoring king safety.
func (p *Position) Captures(c Color, dst []Move) []Move {
	return p.pseudoMoves(c, true, dst)
}

// IsLegal reports whether m is legal here. A declared identity must be one
// the mover's side still has unaccounted for.
func (p *Position) IsLegal(m Move) bool {
	base := m.Base()
	if d := m.Declared(); d != NoType {
		if !p.squares[m.From()].Hidden() || !p.canReveal(p.turn, d) {
			return false
		}
	}
	var buf [128]Move
	for _, lm := range p.LegalMoves(buf[:0]) {
		if lm == base {
			return true
		}
	}
	return false
}

// GivesCheck reports whether the side to move is in check, typically called
// right after Apply.
func (p *Position) GivesCheck() bool {
	return p.InCheck(p.turn)
}

func (p *Position) legal(dst []Move, capturesOnly bool) []Move {
	start := len(dst)
	dst = p.pseudoMoves(p.turn, capturesOnly, dst)
	n := start
	for i := start; i < len(dst); i++ {
		if p.isLegal(dst[i]) {
			dst[n] = dst[i]
			n++
		}
	}
	return dst[:n]
}

func (p *Position) isLegal(m Move) bool {
	c := p.turn
	u := p.Apply(m)
	ok := !p.InCheck(c)
	p.UndoMove(u)
	return ok
}

func (p *Position) pseudoMoves(c Color, capturesOnly bool, dst []Move) []Move {
	for s := Square(0); s < NumSquares; s++ {
		pc := p.squares[s]
		if pc.IsEmpty() || pc.Color() != c {
			continue
		}
		dst = p.pieceMoves(s, pc, capturesOnly, dst)
	}
	return dst
}

func (p *Position) pieceMoves(from Square, pc Piece, capturesOnly bool, dst []Move) []Move {
	c := pc.Color()
	hidden := pc.Hidden()
	add := func(to Square) {
		target := p.squares[to]
		if !target.IsEmpty() && target.Color() == c {
			return
		}
		if capturesOnly && target.IsEmpty() {
			return
		}
		if hidden {
			dst = append(dst, NewReveal(from, to))
		} else {
			dst = append(dst, NewMove(from, to))
		}
	}

	switch p.MovementType(from) {
	case King:
		for _, o := range orthogonal {
			if to, ok := from.offset(o.dr, o.dc); ok && inPalace(to, c) {
				add(to)
			}
		}
		if k := p.kings[c.Other()]; k != NoSquare && k.Col() == from.Col() && p.fileClear(from, k) {
			add(k)
		}
	case Advisor:
		for _, o := range diagonal {
			if to, ok := from.offset(o.dr, o.dc); ok && inPalace(to, c) {
				add(to)
			}
		}
	case Elephant:
		for _, o := range diagonal {
			to, ok := from.offset(2*o.dr, 2*o.dc)
			if !ok || !onOwnSide(to, c) {
				continue
			}
			eye, _ := from.offset(o.dr, o.dc)
			if p.squares[eye].IsEmpty() {
				add(to)
			}
		}
	case Horse:
		for _, j := range horseJumps {
			to, ok := from.offset(j.to.dr, j.to.dc)
			if !ok {
				continue
			}
			leg, _ := from.offset(j.leg.dr, j.leg.dc)
			if p.squares[leg].IsEmpty() {
				add(to)
			}
		}
	case Rook:
		for _, o := range orthogonal {
			to, ok := from.offset(o.dr, o.dc)
			for ok {
				add(to)
				if !p.squares[to].IsEmpty() {
					break
				}
				to, ok = to.offset(o.dr, o.dc)
			}
		}
	case Cannon:
		for _, o := range orthogonal {
			screened := false
			to, ok := from.offset(o.dr, o.dc)
			for ok {
				if p.squares[to].IsEmpty() {
					if !screened {
						add(to)
					}
				} else if !screened {
					screened = true
				} else {
					add(to)
					break
				}
				to, ok = to.offset(o.dr, o.dc)
			}
		}
	case Pawn:
		if to, ok := from.offset(pawnForward(c), 0); ok {
			add(to)
		}
		if crossedRiver(from, c) {
			for _, dc := range []int{-1, 1} {
				if to, ok := from.offset(0, dc); ok {
					add(to)
				}
			}
		}
	}
	return dst
}

// fileClear reports whether every square strictly between a and b, which
// share a column, is empty.
func (p *Position) fileClear(a, b Square) bool {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	for s := lo + NumCols; s < hi; s += NumCols {
		if !p.squares[s].IsEmpty() {
			return false
		}
	}
	return true
}

// attacked reports whether any piece of color by could move onto s. It
// works backwards from s instead of generating by's moves.
func (p *Position) attacked(s Square, by Color) bool {
	enemy := func(sq Square) (PieceType, bool) {
		pc := p.squares[sq]
		if pc.IsEmpty() || pc.Color() != by {
			return NoType, false
		}
		return p.MovementType(sq), true
	}

	// Lines: rook, cannon and the facing kings.
	for _, o := range orthogonal {
		screened := false
		sq, ok := s.offset(o.dr, o.dc)
		for ok {
			if p.squares[sq].IsEmpty() {
				sq, ok = sq.offset(o.dr, o.dc)
				continue
			}
			t, isEnemy := enemy(sq)
			if !screened {
				if isEnemy && (t == Rook || (t == King && o.dc == 0 && p.squares[s].Type() == King)) {
					return true
				}
				screened = true
			} else {
				if isEnemy && t == Cannon {
					return true
				}
				break
			}
			sq, ok = sq.offset(o.dr, o.dc)
		}
	}

	// A horse at h attacks s when h+jump == s and h's leg is empty.
	for _, j := range horseJumps {
		h, ok := s.offset(-j.to.dr, -j.to.dc)
		if !ok {
			continue
		}
		if t, isEnemy := enemy(h); isEnemy && t == Horse {
			leg, _ := h.offset(j.leg.dr, j.leg.dc)
			if p.squares[leg].IsEmpty() {
				return true
			}
		}
	}

	// Pawns: straight ahead, or sideways once across the river.
	if pw, ok := s.offset(-pawnForward(by), 0); ok {
		if t, isEnemy := enemy(pw); isEnemy && t == Pawn {
			return true
		}
	}
	for _, dc := range []int{-1, 1} {
		if pw, ok := s.offset(0, dc); ok && crossedRiver(pw, by) {
			if t, isEnemy := enemy(pw); isEnemy && t == Pawn {
				return true
			}
		}
	}

	if inPalace(s, by) {
		for _, o := range orthogonal {
			if k, ok := s.offset(o.dr, o.dc); ok {
				if t, isEnemy := enemy(k); isEnemy && t == King {
					return true
				}
			}
		}
		for _, o := range diagonal {
			if a, ok := s.offset(o.dr, o.dc); ok {
				if t, isEnemy := enemy(a); isEnemy && t == Advisor {
					return true
				}
			}
		}
	}

	if onOwnSide(s, by) {
		for _, o := range diagonal {
			e, ok := s.offset(2*o.dr, 2*o.dc)
			if !ok {
				continue
			}
			if t, isEnemy := enemy(e); isEnemy && t == Elephant {
				eye, _ := s.offset(o.dr, o.dc)
				if p.squares[eye].IsEmpty() {
					return true
				}
			}
		}
	}
	return false
}
