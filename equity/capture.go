package equity

import (
	"github.com/domino14/jieqi/board"
)

// CaptureWeight scales the best immediate capture each side has.
const CaptureWeight = 0.3

// CapturePotentialCalculator rewards the side with the more valuable capture
// on offer. Captures are pseudo-legal; king captures are skipped.
type CapturePotentialCalculator struct {
	Valuation HiddenValuation

	buf []board.Move
}

func (*CapturePotentialCalculator) Name() string { return "capture" }

func (c *CapturePotentialCalculator) Equity(s *Snapshot) int {
	red := c.bestCapture(s, board.Red)
	black := c.bestCapture(s, board.Black)
	return int(CaptureWeight * float64(red-black))
}

func (c *CapturePotentialCalculator) bestCapture(s *Snapshot, attacker board.Color) int {
	c.buf = s.Pos.Captures(attacker, c.buf[:0])
	best := 0
	for _, m := range c.buf {
		victim := s.Pos.PieceAt(m.To())
		if victim.Type() == board.King {
			continue
		}
		if v := c.Valuation.pieceValue(s, m.To()); v > best {
			best = v
		}
	}
	return best
}
