package tictactoe

import (
	"fmt"
	"strings"

	"mcts/game"
)

const (
	Size  = 3
	Cells = Size * Size
)

// Players in seating order. X always moves first.
const (
	PlayerX game.Player = 0
	PlayerO game.Player = 1
)

type Cell int

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return " "
	}
}

func cellOf(p game.Player) Cell {
	if p == PlayerX {
		return X
	}
	return O
}

// lines lists the 3 rows, 3 columns and 2 diagonals as row-major cell indices.
var lines = [8][Size]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is a row-major 3x3 grid, derived by replaying a history.
type Board [Cells]Cell

// Replay rebuilds a board from an empty grid. It fails with a contract
// violation if the history could not have been produced by LegalActions.
func Replay(history []game.Action) (Board, error) {
	var b Board
	for i, action := range history {
		if err := b.place(action); err != nil {
			return b, fmt.Errorf("replaying move %d: %w", i, err)
		}
	}
	return b, nil
}

func (b *Board) place(action game.Action) error {
	if action.Target < 0 || action.Target >= Cells {
		return fmt.Errorf("target %d outside the board: %w", action.Target, game.ErrContractViolation)
	}
	if _, won := b.Winner(); won {
		return fmt.Errorf("%v after the game was won: %w", action, game.ErrContractViolation)
	}
	if toMove := b.ToMove(); action.Mover != toMove {
		return fmt.Errorf("%v out of turn, player %d to move: %w", action, toMove, game.ErrContractViolation)
	}
	if b[action.Target] != Empty {
		return fmt.Errorf("%v onto occupied cell: %w", action, game.ErrContractViolation)
	}
	b[action.Target] = cellOf(action.Mover)
	return nil
}

// Marks counts the cells owned by p.
func (b Board) Marks(p game.Player) int {
	mark := cellOf(p)
	n := 0
	for _, c := range b {
		if c == mark {
			n++
		}
	}
	return n
}

// Turns is the number of marks placed so far.
func (b Board) Turns() int {
	return b.Marks(PlayerX) + b.Marks(PlayerO)
}

// ToMove is the player with the fewest marks; X on ties.
func (b Board) ToMove() game.Player {
	if b.Marks(PlayerO) < b.Marks(PlayerX) {
		return PlayerO
	}
	return PlayerX
}

// Winner reports the owner of a completed line, if any.
func (b Board) Winner() (game.Player, bool) {
	for _, line := range lines {
		c := b[line[0]]
		if c != Empty && c == b[line[1]] && c == b[line[2]] {
			if c == X {
				return PlayerX, true
			}
			return PlayerO, true
		}
	}
	return 0, false
}

func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Terminal is true once a line is completed or the board is full.
func (b Board) Terminal() bool {
	_, won := b.Winner()
	return won || b.Full()
}

// EmptyCells returns the free cell indices in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, Cells)
	for i, c := range b {
		if c == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

func (b Board) String() string {
	return Grid(func(i int) string {
		return b[i].String()
	})
}

// Grid lays out one rendered string per cell, in row-major order, as the 3x3
// board drawing shared by every board view.
func Grid(cell func(i int) string) string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		if row > 0 {
			sb.WriteString("\n---+---+---\n")
		}
		for col := 0; col < Size; col++ {
			if col > 0 {
				sb.WriteString("|")
			}
			sb.WriteString(" " + cell(row*Size+col) + " ")
		}
	}
	return sb.String()
}
