package engine

import (
	"context"
	"errors"

	"mcts/experiments/metrics"
)

// MaxMoves bounds a game whose rules never report a terminal position.
const MaxMoves = 10000

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrNoAgent     = errors.New("no agent for player")
	ErrMaxMoves    = errors.New("move limit reached")
)

type Engine interface {
	// Run plays a game till the rules report no legal actions
	Run(ctx context.Context) (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
