package searcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/game/tictactoe"
	"mcts/meta"

	"github.com/stretchr/testify/require"
)

// moves builds a history where X and O alternate, X first.
func moves(cells ...int) []game.Action {
	history := make([]game.Action, len(cells))
	for i, cell := range cells {
		history[i] = game.Action{Mover: game.Player(i % 2), Target: cell}
	}
	return history
}

func TestNewMCTS(t *testing.T) {
	t.Run("panics on empty budgets", func(t *testing.T) {
		require.Panics(t, func() { NewMCTS(WithIterations(0)) })
		require.Panics(t, func() { NewMCTS(WithDuration(0)) })
		require.Panics(t, func() { NewMCTS(WithExploration(0)) })
		require.Panics(t, func() { NewMCTS(WithGoroutines(0)) })
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("opening move is the center or a corner", func(t *testing.T) {
		rules := tictactoe.NewRules(tictactoe.PlayerX)
		for seed := uint64(1); seed <= 20; seed++ {
			result, err := NewMCTS(WithIterations(meta.Iterations), WithDuration(time.Minute), WithSeed(seed)).Search(ctx, rules)
			require.NoError(t, err)

			move, ok := result.BestMove()

			require.True(t, ok)
			require.Equal(t, tictactoe.PlayerX, move.Mover)
			require.Contains(t, []int{0, 2, 4, 6, 8}, move.Target, "Edges are the weakest opening (seed %d)", seed)
		}
	})

	t.Run("takes an immediate win", func(t *testing.T) {
		// X . X / O O . / . . .
		prefix := moves(0, 3, 2, 4)
		rules := game.Continue(tictactoe.NewRules(tictactoe.PlayerX), prefix)
		result, err := NewMCTS(WithIterations(50), WithDuration(time.Minute), WithSeed(9)).Search(ctx, rules)
		require.NoError(t, err)

		move, ok := result.BestMove()

		require.True(t, ok)
		require.Equal(t, game.Action{Mover: tictactoe.PlayerX, Target: 1}, move)
	})

	t.Run("designated O takes its immediate win", func(t *testing.T) {
		// O moves next and can complete the middle row.
		prefix := moves(0, 3, 2, 4, 8)
		rules := game.Continue(tictactoe.NewRules(tictactoe.PlayerO), prefix)
		result, err := NewMCTS(WithIterations(200), WithDuration(time.Minute), WithSeed(3)).Search(ctx, rules)
		require.NoError(t, err)

		move, ok := result.BestMove()

		require.True(t, ok)
		require.Equal(t, game.Action{Mover: tictactoe.PlayerO, Target: 5}, move)
	})

	t.Run("terminal root yields no move", func(t *testing.T) {
		rules := game.Continue(tictactoe.NewRules(tictactoe.PlayerX), moves(0, 3, 1, 4, 2))
		result, err := NewMCTS(WithIterations(10), WithDuration(time.Minute)).Search(ctx, rules)
		require.NoError(t, err)

		_, ok := result.BestMove()

		require.False(t, ok)
		require.Nil(t, result.BestChild())
		require.True(t, result.Root.IsLeaf())
		require.Equal(t, 10, result.Root.Visits(), "Terminal root is scored every iteration")
	})

	t.Run("root visits match iterations and children visits", func(t *testing.T) {
		rules := tictactoe.NewRules(tictactoe.PlayerX)
		result, err := NewMCTS(WithIterations(200), WithDuration(time.Minute), WithSeed(5)).Search(ctx, rules)
		require.NoError(t, err)

		total := 0
		for _, visits := range result.Policy() {
			total += visits
		}
		require.Equal(t, 200, result.Root.Visits())
		require.Equal(t, 200, total)
		require.Len(t, result.Policy(), 9)
	})

	t.Run("same seed gives the same tree", func(t *testing.T) {
		rules := tictactoe.NewRules(tictactoe.PlayerX)
		first, err := NewMCTS(WithIterations(300), WithDuration(time.Minute), WithSeed(11)).Search(ctx, rules)
		require.NoError(t, err)
		second, err := NewMCTS(WithIterations(300), WithDuration(time.Minute), WithSeed(11)).Search(ctx, rules)
		require.NoError(t, err)

		require.Equal(t, first.Policy(), second.Policy())
		require.Equal(t, first.Root.Size(), second.Root.Size())
	})

	t.Run("cancelled context stops before the first iteration", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := NewMCTS(WithMetrics()).Search(cancelled, tictactoe.NewRules(tictactoe.PlayerX))

		require.NoError(t, err)
		require.Zero(t, result.Root.Visits())
		require.Equal(t, metrics.StopCancelled, result.Metric.StopReason)
		_, ok := result.BestMove()
		require.False(t, ok)
	})

	t.Run("wall clock budget stops the search", func(t *testing.T) {
		m := NewMCTS(WithIterations(1<<30), WithDuration(20*time.Millisecond), WithMetrics())

		result, err := m.Search(ctx, tictactoe.NewRules(tictactoe.PlayerX))

		require.NoError(t, err)
		require.Equal(t, metrics.StopDuration, result.Metric.StopReason)
		require.Positive(t, result.Root.Visits())
	})

	t.Run("metrics count episodes and playouts", func(t *testing.T) {
		m := NewMCTS(WithIterations(100), WithDuration(time.Minute), WithMetrics(), WithSeed(2))

		result, err := m.Search(ctx, tictactoe.NewRules(tictactoe.PlayerX))

		require.NoError(t, err)
		require.Equal(t, metrics.StopIterations, result.Metric.StopReason)
		require.Equal(t, 100, result.Metric.Episodes)
		require.Equal(t, 100, result.Metric.Playouts)
		require.Equal(t, result.Root.Size(), result.Metric.TreeSize)
		require.Positive(t, result.Metric.Expansions)
	})

	t.Run("rules errors abort the search", func(t *testing.T) {
		boom := errors.New("boom")

		_, err := NewMCTS(WithIterations(10)).Search(ctx, &mockRules{err: boom})

		require.ErrorIs(t, err, boom)
	})

	t.Run("score outside the unit interval is a contract violation", func(t *testing.T) {
		rules := &mockRules{moves: 2, depth: 2, score: 1.5}

		_, err := NewMCTS(WithIterations(10)).Search(ctx, rules)

		require.ErrorIs(t, err, game.ErrContractViolation)
	})
}

func TestSearchParallel(t *testing.T) {
	ctx := context.Background()

	t.Run("merged root holds every tree's visits", func(t *testing.T) {
		m := NewMCTS(WithIterations(100), WithDuration(time.Minute), WithGoroutines(4), WithSeed(8))

		result, err := m.Search(ctx, tictactoe.NewRules(tictactoe.PlayerX))

		require.NoError(t, err)
		require.Equal(t, 400, result.Root.Visits())
		require.Len(t, result.Root.Children(), 9, "Children should be merged by action")
		result.Root.DepthFirst(func(node *Node) bool {
			for _, child := range node.children {
				require.Equal(t, node, child.Parent())
			}
			return true
		})
	})

	t.Run("errors from any worker are returned", func(t *testing.T) {
		boom := errors.New("boom")

		_, err := NewMCTS(WithIterations(10), WithGoroutines(3)).Search(ctx, &mockRules{err: boom})

		require.ErrorIs(t, err, boom)
	})
}

func TestMerge(t *testing.T) {
	a := game.Action{Target: 0}
	b := game.Action{Target: 1}

	dst := newRoot()
	dst.visits, dst.score = 2, 1
	dstA := newChild(dst, a)
	dstA.visits, dstA.score = 2, 1
	dst.children = []*Node{dstA}

	src := newRoot()
	src.visits, src.score = 3, 2
	srcA := newChild(src, a)
	srcA.visits, srcA.score = 1, 0.5
	srcB := newChild(src, b)
	srcB.visits, srcB.score = 2, 1.5
	src.children = []*Node{srcA, srcB}

	merge(dst, src)

	require.Equal(t, 5, dst.visits)
	require.InDelta(t, 3.0, dst.score, 1e-12)
	require.Len(t, dst.children, 2)
	require.Equal(t, 3, dst.child(a).visits)
	require.InDelta(t, 1.5, dst.child(a).score, 1e-12)
	require.Equal(t, srcB, dst.child(b))
	require.Equal(t, dst, srcB.parent)
	require.Empty(t, src.children)
}
