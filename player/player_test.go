package player

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"mcts/game"
	"mcts/game/tictactoe"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestHumanFindMove(t *testing.T) {
	ctx := context.Background()

	t.Run("reads a 1-based cell", func(t *testing.T) {
		var out bytes.Buffer
		h := NewHuman(tictactoe.PlayerX, strings.NewReader("5\n"), &out)

		move, _, err := h.FindMove(ctx, nil)

		require.NoError(t, err)
		require.Equal(t, game.Action{Mover: tictactoe.PlayerX, Target: 4}, move)
		require.Contains(t, out.String(), "pick a cell")
	})

	t.Run("asks again after invalid input", func(t *testing.T) {
		var out bytes.Buffer
		h := NewHuman(tictactoe.PlayerO, strings.NewReader("abc\n5\n10\n1\n"), &out)
		history := []game.Action{{Mover: tictactoe.PlayerX, Target: 4}}

		move, _, err := h.FindMove(ctx, history)

		require.NoError(t, err)
		require.Equal(t, game.Action{Mover: tictactoe.PlayerO, Target: 0}, move)
		require.Equal(t, 3, strings.Count(out.String(), "not an empty cell"))
	})

	t.Run("end of input is an error", func(t *testing.T) {
		h := NewHuman(tictactoe.PlayerX, strings.NewReader(""), &bytes.Buffer{})

		_, _, err := h.FindMove(ctx, nil)

		require.ErrorIs(t, err, ErrNoInput)
	})

	t.Run("invalid history is a contract violation", func(t *testing.T) {
		h := NewHuman(tictactoe.PlayerX, strings.NewReader("1\n"), &bytes.Buffer{})

		_, _, err := h.FindMove(ctx, []game.Action{{Mover: tictactoe.PlayerO, Target: 0}})

		require.ErrorIs(t, err, game.ErrContractViolation)
	})
}

func TestRender(t *testing.T) {
	out := termenv.NewOutput(&bytes.Buffer{}, termenv.WithProfile(termenv.Ascii))
	b, err := tictactoe.Replay([]game.Action{{Mover: tictactoe.PlayerX, Target: 0}, {Mover: tictactoe.PlayerO, Target: 4}})
	require.NoError(t, err)

	require.Equal(t, " X | 2 | 3 \n---+---+---\n 4 | O | 6 \n---+---+---\n 7 | 8 | 9 ", Render(out, b))
}
