package game

import "fmt"

// Player identifies a participant. Two-player games use 0 and 1.
type Player int

// Action is one legal move by one player at one point in the game.
// Target holds the game-specific effect (a board cell for tic-tac-toe).
// Actions are values: two actions are equal iff mover and target are equal.
type Action struct {
	Mover  Player `json:"mover"`
	Target int    `json:"target"`
}

func (a Action) String() string {
	return fmt.Sprintf("Action(player=%d, target=%d)", a.Mover, a.Target)
}
