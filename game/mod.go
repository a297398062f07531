package game

import "errors"

// ErrContractViolation marks misuse of the Rules contract: scoring a non-terminal
// history, selecting from an unexpanded node, or replaying an impossible history.
// It is never recovered or retried.
var ErrContractViolation = errors.New("contract violation")

// Rules is the capability a game must provide to be searchable.
//
// Histories are the full ordered sequence of actions from the initial state.
// Rules must be pure: the same history always yields the same answer.
type Rules interface {
	// LegalActions returns every move for the player to move next.
	// An empty result means the history is terminal.
	LegalActions(history []Action) ([]Action, error)
	// Score returns the outcome of a terminal history in [0, 1] from the
	// maximizing player's perspective.
	Score(history []Action) (float64, error)
	// Maximizer is the designated player whose expected score is maximized.
	Maximizer() Player
}

// Outcome classifies a terminal score from the maximizer's perspective.
type Outcome int

const (
	Loss Outcome = iota
	Draw
	Win
)

// DrawScore is the score of a drawn game.
const DrawScore = 0.5

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "draw"
	}
}

// OutcomeOf maps a score in [0, 1] to an outcome: above one half is a win,
// below is a loss, exactly one half is a draw.
func OutcomeOf(score float64) Outcome {
	switch {
	case score > DrawScore:
		return Win
	case score < DrawScore:
		return Loss
	default:
		return Draw
	}
}
