package agent

import (
	"context"
	"fmt"
	"math"
	"sync"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/searcher"

	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	rules       game.Rules
	temperature float64
	mu          sync.Mutex
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. It samples
// root moves in proportion to visits^(1/temperature) instead of playing the best one.
func NewTrainingAgent(mcts *searcher.MCTS, rules game.Rules, temperature float64, seed uint64) Agent {
	if temperature <= 0 {
		panic("Temperature must be positive")
	}
	return &trainingAgent{
		mcts:        mcts,
		rules:       rules,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) FindMove(ctx context.Context, history []game.Action) (game.Action, metrics.SearchMetric, error) {
	result, err := a.mcts.Search(ctx, game.Continue(a.rules, history))
	if err != nil {
		return game.Action{}, metrics.SearchMetric{}, err
	}
	policy := adjustTemperature(result.Policy(), a.temperature)
	if len(policy) == 0 {
		return game.Action{}, result.Metric, fmt.Errorf("after %d moves: %w", len(history), searcher.ErrNoMoveAvailable)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return sample(policy, a.rng), result.Metric, nil
}

type weightedAction struct {
	action game.Action
	prob   float64
}

// adjustTemperature turns visit counts into move probabilities, ordered by target
// so that sampling with a fixed seed is reproducible.
func adjustTemperature(policy map[game.Action]int, temperature float64) []weightedAction {
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]weightedAction, 0, len(policy))
	for action, visits := range policy {
		prob := math.Pow(float64(visits), exponent)
		sum += prob
		adjusted = append(adjusted, weightedAction{action: action, prob: prob})
	}
	slices.SortFunc(adjusted, func(a, b weightedAction) int {
		return a.action.Target - b.action.Target
	})
	if sum == 0 { // Nothing visited
		return nil
	}
	// Normalize
	for i := range adjusted {
		adjusted[i].prob /= sum
	}
	return adjusted
}

func sample(policy []weightedAction, rng *rand.Rand) game.Action {
	sampled := rng.Float64()
	cumulative := 0.0
	for _, wa := range policy {
		cumulative += wa.prob
		if sampled < cumulative {
			return wa.action
		}
	}
	return policy[len(policy)-1].action // Fallback in case of rounding errors
}
