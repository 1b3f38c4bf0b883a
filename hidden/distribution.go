// Package hidden models what a side's face-down pieces may turn out to be.
//
// The model only counts: every identity not yet seen on the board or among
// the captured pieces is equally likely to be under any face-down piece.
package hidden

import (
	"github.com/domino14/jieqi/board"
)

// DefaultExpectedValue is used when nothing is left in the pool.
const DefaultExpectedValue = 300

// Face-down pieces are valued at 80% of their possible identities.
const (
	discountNum = 8
	discountDen = 10
)

// leftover pool slots are handed out to the most valuable types first.
var leftoverOrder = [...]board.PieceType{
	board.Rook, board.Cannon, board.Horse, board.Elephant, board.Advisor, board.Pawn,
}

// Outcome is one possible identity of a face-down piece.
type Outcome struct {
	Type        board.PieceType
	Probability float64
}

// Distribution is the remaining pool of identities for one side. It is
// recomputed from the position whenever it is needed, never cached.
type Distribution struct {
	side      board.Color
	remaining [board.NumTypes]int
	onBoard   int
}

// FromPosition computes side's pool: the census minus the pieces already
// revealed and minus captured pieces of known identity. When face-down
// pieces were captured without being identified the pool is scaled down to
// the number still on the board.
func FromPosition(pos *board.Position, side board.Color) Distribution {
	d := Distribution{side: side, onBoard: pos.Hidden(side)}
	sum := 0
	for t := board.Advisor; t < board.NoType; t++ {
		n := board.Census[t] - pos.Revealed(side, t) - pos.CapturedKnown(side, t)
		if n < 0 {
			n = 0
		}
		d.remaining[t] = n
		sum += n
	}
	if pos.CapturedUnknown(side) > 0 && sum > d.onBoard && d.onBoard > 0 {
		d.scaleTo(sum, d.onBoard)
	}
	return d
}

func (d *Distribution) scaleTo(sum, target int) {
	var scaled [board.NumTypes]int
	assigned := 0
	for t := board.Advisor; t < board.NoType; t++ {
		scaled[t] = d.remaining[t] * target / sum
		assigned += scaled[t]
	}
	left := target - assigned
	for _, t := range leftoverOrder {
		if left == 0 {
			break
		}
		add := min(d.remaining[t]-scaled[t], left)
		scaled[t] += add
		left -= add
	}
	d.remaining = scaled
}

func (d Distribution) Side() board.Color {
	return d.side
}

// Remaining is the pool count for t.
func (d Distribution) Remaining(t board.PieceType) int {
	if t >= board.NoType {
		return 0
	}
	return d.remaining[t]
}

// Total is the size of the pool.
func (d Distribution) Total() int {
	sum := 0
	for _, n := range d.remaining {
		sum += n
	}
	return sum
}

// Probability that a face-down piece of this side is t.
func (d Distribution) Probability(t board.PieceType) float64 {
	total := d.Total()
	if total == 0 || d.onBoard == 0 || t >= board.NoType {
		return 0
	}
	return float64(d.remaining[t]) / float64(total)
}

// PossibleTypes lists every identity with a nonzero chance, in type order.
// It is empty when the side has no face-down pieces, in which case a reveal
// is searched as an ordinary move.
func (d Distribution) PossibleTypes() []Outcome {
	total := d.Total()
	if total == 0 || d.onBoard == 0 {
		return nil
	}
	out := make([]Outcome, 0, board.NumTypes)
	for t := board.Advisor; t < board.NoType; t++ {
		if d.remaining[t] > 0 {
			out = append(out, Outcome{Type: t, Probability: float64(d.remaining[t]) / float64(total)})
		}
	}
	return out
}

// ExpectedValue is the average discounted material value of the pool.
func (d Distribution) ExpectedValue() int {
	total := d.Total()
	if total == 0 {
		return DefaultExpectedValue
	}
	sum := 0
	for t := board.Advisor; t < board.NoType; t++ {
		sum += d.remaining[t] * board.PieceValues[t] * discountNum / discountDen
	}
	return sum / total
}
