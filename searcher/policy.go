package searcher

import (
	"fmt"
	"math"

	"mcts/game"

	"golang.org/x/exp/rand"
)

// uct precomputes the parent-dependent part of UCB1 for one selection step.
type uct struct {
	c         float64
	numerator float64
}

func newUCT(c float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{c: c, numerator: 2 * math.Log(N)}
}

func (u uct) exploration(n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// C * sqrt(2*ln(N)/n)
	return u.c * math.Sqrt(u.numerator/n)
}

// priority is q/n + exploration for the maximizer and -q/n + exploration for the
// opponent. Unvisited nodes always come first.
func (u uct) priority(q float64, n float64, maximizing bool) float64 {
	if n == 0 {
		return math.Inf(1)
	}
	exploitation := q / n
	if !maximizing {
		exploitation = -exploitation
	}
	return exploitation + u.exploration(n)
}

type selector struct {
	c         float64
	maximizer game.Player
	rng       *rand.Rand
	ties      []*Node
}

func newSelector(c float64, maximizer game.Player, rng *rand.Rand) *selector {
	return &selector{c: c, maximizer: maximizer, rng: rng}
}

// pick returns the child of parent with the highest priority, breaking ties at random.
// The mover is read from the children's actions, which came from LegalActions.
func (s *selector) pick(parent *Node) (*Node, error) {
	if parent.IsLeaf() {
		return nil, fmt.Errorf("selecting from a node without children: %w", game.ErrContractViolation)
	}

	maximizing := parent.children[0].action.Mover == s.maximizer
	// ln(0) is -Inf; an unvisited parent only has unvisited children so N is irrelevant
	policy := newUCT(s.c, math.Max(float64(parent.visits), 1))

	best := math.Inf(-1)
	s.ties = s.ties[:0]
	for _, child := range parent.children {
		p := policy.priority(child.score, float64(child.visits), maximizing)
		switch {
		case p > best:
			best = p
			s.ties = append(s.ties[:0], child)
		case p == best:
			s.ties = append(s.ties, child)
		}
	}

	if len(s.ties) == 1 {
		return s.ties[0], nil
	}
	return s.ties[s.rng.Intn(len(s.ties))], nil
}
