package player

import (
	"strconv"

	"mcts/game"
	"mcts/game/tictactoe"

	"github.com/muesli/termenv"
)

// Mark returns the colored symbol of a player.
func Mark(out *termenv.Output, p game.Player) string {
	if p == tictactoe.PlayerX {
		return out.String(tictactoe.X.String()).Foreground(out.Color("4")).Bold().String()
	}
	return out.String(tictactoe.O.String()).Foreground(out.Color("1")).Bold().String()
}

// Render draws the board with colored marks; empty cells show their 1-based
// number so a human can pick them.
func Render(out *termenv.Output, b tictactoe.Board) string {
	return tictactoe.Grid(func(i int) string {
		switch b[i] {
		case tictactoe.X:
			return Mark(out, tictactoe.PlayerX)
		case tictactoe.O:
			return Mark(out, tictactoe.PlayerO)
		default:
			return out.String(strconv.Itoa(i + 1)).Faint().String()
		}
	})
}
