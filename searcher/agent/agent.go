package agent

import (
	"context"

	"mcts/experiments/metrics"
	"mcts/game"
)

type Agent interface {
	// FindMove returns the move to play after history and the metrics of the search that chose it
	FindMove(ctx context.Context, history []game.Action) (game.Action, metrics.SearchMetric, error)
}
