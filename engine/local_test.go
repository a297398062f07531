package engine

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"mcts/communication/client"
	"mcts/communication/server"
	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/game/tictactoe"
	"mcts/searcher"
	"mcts/searcher/agent"

	"github.com/stretchr/testify/require"
)

// scriptedAgent plays fixed targets in order.
type scriptedAgent struct {
	player  game.Player
	targets []int
	next    int
}

func (a *scriptedAgent) FindMove(ctx context.Context, history []game.Action) (game.Action, metrics.SearchMetric, error) {
	if a.next >= len(a.targets) {
		return game.Action{}, metrics.SearchMetric{}, errors.New("script exhausted")
	}
	target := a.targets[a.next]
	a.next++
	return game.Action{Mover: a.player, Target: target}, metrics.SearchMetric{Episodes: 1}, nil
}

func scripted(x, o []int) map[game.Player]agent.Agent {
	return map[game.Player]agent.Agent{
		tictactoe.PlayerX: &scriptedAgent{player: tictactoe.PlayerX, targets: x},
		tictactoe.PlayerO: &scriptedAgent{player: tictactoe.PlayerO, targets: o},
	}
}

func TestLocalEngine(t *testing.T) {
	ctx := context.Background()
	referee := tictactoe.NewRules(tictactoe.PlayerX)

	t.Run("panics with fewer than two agents", func(t *testing.T) {
		require.Panics(t, func() {
			LocalEngine(referee, map[game.Player]agent.Agent{tictactoe.PlayerX: &scriptedAgent{}})
		})
	})

	t.Run("X completes the top row", func(t *testing.T) {
		e := LocalEngine(referee, scripted([]int{0, 1, 2}, []int{3, 4}))

		gameMetric, moveMetrics, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, int(tictactoe.PlayerX), gameMetric.Winner)
		require.Equal(t, int(tictactoe.PlayerX), gameMetric.StartingPlayer)
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.InDelta(t, tictactoe.WinScore(5), gameMetric.Score, 1e-12)
		require.Len(t, moveMetrics, 5)
		require.Equal(t, 1, moveMetrics[0].Step)
		require.Equal(t, 4, moveMetrics[3].Target)
		require.Len(t, e.History(), 5)
	})

	t.Run("O wins the middle column", func(t *testing.T) {
		e := LocalEngine(referee, scripted([]int{0, 2, 6}, []int{1, 4, 7}))

		gameMetric, _, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, int(tictactoe.PlayerO), gameMetric.Winner)
		require.Zero(t, gameMetric.Score)
	})

	t.Run("full board without a line is a draw", func(t *testing.T) {
		e := LocalEngine(referee, scripted([]int{0, 2, 3, 7, 8}, []int{1, 4, 5, 6}))

		gameMetric, _, err := e.Run(ctx)

		require.NoError(t, err)
		require.Equal(t, -1, gameMetric.Winner)
		require.Equal(t, 0.5, gameMetric.Score)
		require.Equal(t, 9, gameMetric.TotalMoves)
	})

	t.Run("occupied cell is rejected", func(t *testing.T) {
		e := LocalEngine(referee, scripted([]int{4}, []int{4}))

		_, moveMetrics, err := e.Run(ctx)

		require.ErrorIs(t, err, ErrIllegalMove)
		require.Len(t, moveMetrics, 1)
	})

	t.Run("agent errors stop the game", func(t *testing.T) {
		e := LocalEngine(referee, scripted([]int{4}, nil))

		_, _, err := e.Run(ctx)

		require.ErrorContains(t, err, "script exhausted")
	})

	t.Run("search agents finish a game", func(t *testing.T) {
		newMCTS := func(seed uint64) *searcher.MCTS {
			return searcher.NewMCTS(searcher.WithIterations(300), searcher.WithDuration(time.Minute), searcher.WithSeed(seed), searcher.WithMetrics())
		}
		agents := map[game.Player]agent.Agent{
			tictactoe.PlayerX: agent.NewEvaluationAgent(newMCTS(1), tictactoe.NewRules(tictactoe.PlayerX)),
			tictactoe.PlayerO: agent.NewEvaluationAgent(newMCTS(2), tictactoe.NewRules(tictactoe.PlayerO)),
		}
		e := LocalEngine(referee, agents)

		gameMetric, moveMetrics, err := e.Run(ctx)

		require.NoError(t, err)
		require.GreaterOrEqual(t, gameMetric.TotalMoves, 5)
		require.LessOrEqual(t, gameMetric.TotalMoves, 9)
		require.Contains(t, []int{-1, 0, 1}, gameMetric.Winner)
		for _, mm := range moveMetrics {
			require.Equal(t, 300, mm.Episodes)
		}
	})
}

func TestRemoteEngine(t *testing.T) {
	srv := httptest.NewServer(server.NewServer(tictactoe.RulesFor, server.Limits{},
		searcher.WithIterations(200),
		searcher.WithDuration(time.Minute),
		searcher.WithSeed(5),
	).Router())
	defer srv.Close()

	e := RemoteEngine(tictactoe.NewRules(tictactoe.PlayerX), map[game.Player]string{
		tictactoe.PlayerX: srv.URL,
		tictactoe.PlayerO: srv.URL,
	}, client.Budget{})

	gameMetric, moveMetrics, err := e.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, moveMetrics, gameMetric.TotalMoves)
	require.Equal(t, int(tictactoe.PlayerX), gameMetric.StartingPlayer)
}
