package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/game/tictactoe"

	"github.com/muesli/termenv"
	"golang.org/x/exp/slices"
)

var ErrNoInput = errors.New("no input")

// Human is a tic-tac-toe player typing cells 1-9 at a terminal. It implements
// agent.Agent so the engine can pit it against a search agent.
type Human struct {
	ID  game.Player
	in  *bufio.Scanner
	out *termenv.Output
}

// NewHuman creates a new Human reading moves from in and drawing the board to out.
func NewHuman(id game.Player, in io.Reader, out io.Writer) *Human {
	return &Human{
		ID:  id,
		in:  bufio.NewScanner(in),
		out: termenv.NewOutput(out),
	}
}

func (h *Human) FindMove(ctx context.Context, history []game.Action) (game.Action, metrics.SearchMetric, error) {
	b, err := tictactoe.Replay(history)
	if err != nil {
		return game.Action{}, metrics.SearchMetric{}, err
	}
	fmt.Fprintln(h.out, Render(h.out, b))

	for {
		if err := ctx.Err(); err != nil {
			return game.Action{}, metrics.SearchMetric{}, err
		}
		fmt.Fprintf(h.out, "%s to move, pick a cell (1-9): ", Mark(h.out, h.ID))
		if !h.in.Scan() {
			if err := h.in.Err(); err != nil {
				return game.Action{}, metrics.SearchMetric{}, err
			}
			return game.Action{}, metrics.SearchMetric{}, ErrNoInput
		}

		cell, err := strconv.Atoi(strings.TrimSpace(h.in.Text()))
		if err != nil || !slices.Contains(b.EmptyCells(), cell-1) {
			fmt.Fprintln(h.out, h.out.String("not an empty cell").Foreground(h.out.Color("1")))
			continue
		}
		return game.Action{Mover: h.ID, Target: cell - 1}, metrics.SearchMetric{}, nil
	}
}
