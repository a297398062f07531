package tictactoe

import (
	"fmt"

	"mcts/game"
)

// winCredit is the share of a win that depends on speed; a win on turn t
// scores 1 - winCredit*t/(Cells+1), which stays inside (0.8, 1].
const winCredit = 0.2

// Rules implements game.Rules for 3x3 tic-tac-toe, scored for a designated player.
type Rules struct {
	designated game.Player
}

func NewRules(designated game.Player) *Rules {
	if designated != PlayerX && designated != PlayerO {
		panic(fmt.Sprintf("tictactoe: unknown player %d", designated))
	}
	return &Rules{designated: designated}
}

func (r *Rules) Maximizer() game.Player {
	return r.designated
}

func (r *Rules) LegalActions(history []game.Action) ([]game.Action, error) {
	b, err := Replay(history)
	if err != nil {
		return nil, err
	}
	if _, won := b.Winner(); won {
		return nil, nil
	}

	mover := b.ToMove()
	empty := b.EmptyCells()
	actions := make([]game.Action, 0, len(empty))
	for _, cell := range empty {
		actions = append(actions, game.Action{Mover: mover, Target: cell})
	}
	return actions, nil
}

func (r *Rules) Score(history []game.Action) (float64, error) {
	b, err := Replay(history)
	if err != nil {
		return 0, err
	}

	if winner, won := b.Winner(); won {
		if winner != r.designated {
			return 0, nil
		}
		return WinScore(b.Turns()), nil
	}
	if b.Full() {
		return game.DrawScore, nil
	}
	return 0, fmt.Errorf("scoring a board with %d empty cells: %w", len(b.EmptyCells()), game.ErrContractViolation)
}

// WinScore is the designated player's score for a win completed on the given turn.
func WinScore(turns int) float64 {
	return 1 - winCredit*float64(turns)/float64(Cells+1)
}

// RulesFor returns rules designating the player to move after history.
func RulesFor(history []game.Action) (game.Rules, error) {
	b, err := Replay(history)
	if err != nil {
		return nil, err
	}
	return NewRules(b.ToMove()), nil
}
