package game

import (
	"fmt"
	"strings"

	"github.com/domino14/jieqi/board"
)

// ToDisplayText draws the board with the captured pieces, the side to move
// and the last move alongside it.
func (g *Game) ToDisplayText() string {
	lines := strings.Split(strings.TrimRight(g.pos.String(), "\n"), "\n")
	side := []string{
		fmt.Sprintf("game %s", g.uid),
		fmt.Sprintf("ply %d, %s to move", len(g.history), g.pos.Turn()),
		"captured red:   " + capturedText(g.pos.Captured(board.Red)),
		"captured black: " + capturedText(g.pos.Captured(board.Black)),
	}
	if t, ok := g.LastTurn(); ok {
		side = append(side, "last: "+t.String())
	}
	if !g.Playing() {
		side = append(side, fmt.Sprintf("result: %s (%s)", g.result, g.endReason))
	}
	for i, s := range side {
		if i < len(lines) {
			lines[i] += "   " + s
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func capturedText(cps []board.CapturedPiece) string {
	if len(cps) == 0 {
		return "-"
	}
	var sb strings.Builder
	for _, cp := range cps {
		if cp.Type >= board.NoType {
			sb.WriteByte('?')
			continue
		}
		s := cp.Type.String()
		if cp.WasHidden {
			s = strings.ToLower(s)
		}
		sb.WriteString(s)
	}
	return sb.String()
}
