package engine

import (
	"context"
	"fmt"
	"time"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

type localEngine struct {
	referee game.Rules
	agents  map[game.Player]agent.Agent
	history []game.Action
}

// LocalEngine referees a game between in-process agents. The referee's maximizer
// wins when its score is above one half; each agent keeps its own rules.
func LocalEngine(referee game.Rules, agents map[game.Player]agent.Agent) *localEngine {
	if len(agents) < 2 {
		panic("need at least two players")
	}
	if _, ok := agents[referee.Maximizer()]; !ok {
		panic("referee maximizer has no agent")
	}
	return &localEngine{referee: referee, agents: agents}
}

// History returns the moves played so far.
func (e *localEngine) History() []game.Action {
	return slices.Clone(e.history)
}

func (e *localEngine) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{StartTime: time.Now(), Winner: -1}
	moveMetrics := []metrics.MoveMetric{}
	e.history = nil

	for step := 1; ; step++ {
		legal, err := e.referee.LegalActions(e.history)
		if err != nil {
			return gameMetric, moveMetrics, err
		}
		if len(legal) == 0 {
			break
		}
		if step > MaxMoves {
			return gameMetric, moveMetrics, ErrMaxMoves
		}

		mover := legal[0].Mover
		if step == 1 {
			gameMetric.StartingPlayer = int(mover)
			log.Info().Msgf("player %d is starting", mover)
		}
		a, ok := e.agents[mover]
		if !ok {
			return gameMetric, moveMetrics, fmt.Errorf("player %d: %w", mover, ErrNoAgent)
		}

		move, searchMetric, err := a.FindMove(ctx, e.History())
		if err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("player %d at step %d: %w", mover, step, err)
		}
		if !slices.Contains(legal, move) {
			return gameMetric, moveMetrics, fmt.Errorf("player %d played %v at step %d: %w", mover, move, step, ErrIllegalMove)
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       int(mover),
			Target:       move.Target,
			SearchMetric: searchMetric,
		})
		e.history = append(e.history, move)
		log.Debug().Int("step", step).Int("player", int(mover)).Int("target", move.Target).Msg("move played")
	}

	score, err := e.referee.Score(e.history)
	if err != nil {
		return gameMetric, moveMetrics, err
	}
	gameMetric.Score = score
	gameMetric.TotalMoves = len(e.history)
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)

	switch game.OutcomeOf(score) {
	case game.Win:
		gameMetric.Winner = int(e.referee.Maximizer())
	case game.Loss:
		gameMetric.Winner = int(e.opponent())
	}

	log.Info().Msgf("game over after %d moves, winner: %d", gameMetric.TotalMoves, gameMetric.Winner)
	return gameMetric, moveMetrics, nil
}

// opponent is the last player other than the maximizer to move.
func (e *localEngine) opponent() game.Player {
	for i := len(e.history) - 1; i >= 0; i-- {
		if e.history[i].Mover != e.referee.Maximizer() {
			return e.history[i].Mover
		}
	}
	for player := range e.agents {
		if player != e.referee.Maximizer() {
			return player
		}
	}
	return e.referee.Maximizer()
}
