package agent

import (
	"context"
	"fmt"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/searcher"
)

type evaluationAgent struct {
	mcts  *searcher.MCTS
	rules game.Rules
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
// rules must designate the player the agent moves for.
func NewEvaluationAgent(mcts *searcher.MCTS, rules game.Rules) Agent {
	return evaluationAgent{mcts: mcts, rules: rules}
}

func (a evaluationAgent) FindMove(ctx context.Context, history []game.Action) (game.Action, metrics.SearchMetric, error) {
	result, err := a.mcts.Search(ctx, game.Continue(a.rules, history))
	if err != nil {
		return game.Action{}, metrics.SearchMetric{}, err
	}
	move, ok := result.BestMove()
	if !ok {
		return game.Action{}, result.Metric, fmt.Errorf("after %d moves: %w", len(history), searcher.ErrNoMoveAvailable)
	}
	return move, result.Metric, nil
}
