package searcher

import (
	"fmt"
	"math"

	"mcts/experiments/metrics"
	"mcts/game"

	"golang.org/x/exp/rand"
)

// rollout plays uniformly random moves from node's position until the game ends
// and returns the terminal score. The moves extend a private copy of the history
// and never touch the tree.
func rollout(node *Node, rules game.Rules, rng *rand.Rand, collector metrics.Collector) (float64, error) {
	history := node.History()
	moves := 0

	actions, err := rules.LegalActions(history)
	for err == nil && len(actions) > 0 {
		history = append(history, actions[rng.Intn(len(actions))]) // Random rollout policy
		moves++
		actions, err = rules.LegalActions(history)
	}
	if err != nil {
		return 0, err
	}

	score, err := rules.Score(history)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		return 0, fmt.Errorf("score %v outside [0, 1]: %w", score, game.ErrContractViolation)
	}
	collector.AddPlayout(moves)
	return score, nil
}
