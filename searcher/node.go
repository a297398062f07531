package searcher

import (
	"fmt"

	"mcts/game"
)

// Node is a vertex of the search tree. A parent owns its children; the parent
// pointer is only used to rebuild histories and to back up scores.
type Node struct {
	parent   *Node
	action   game.Action
	children []*Node
	visits   int
	score    float64
}

func newRoot() *Node {
	return &Node{}
}

func newChild(parent *Node, action game.Action) *Node {
	return &Node{parent: parent, action: action}
}

// Parent returns nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Action is the move that led to this node; the root has none.
func (n *Node) Action() (game.Action, bool) {
	if n.parent == nil {
		return game.Action{}, false
	}
	return n.action, true
}

// Children returns a copy of the child list. Callers must not mutate the nodes.
func (n *Node) Children() []*Node {
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

func (n *Node) Visits() int {
	return n.visits
}

// Score is the sum of terminal outcomes backed up through this node.
func (n *Node) Score() float64 {
	return n.score
}

// ExpectedValue is the average outcome, 0 for an unvisited node.
func (n *Node) ExpectedValue() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.score / float64(n.visits)
}

func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// IsTerminal reports whether n is a leaf without legal actions.
func (n *Node) IsTerminal(rules game.Rules) (bool, error) {
	if !n.IsLeaf() {
		return false, nil
	}
	actions, err := rules.LegalActions(n.History())
	if err != nil {
		return false, err
	}
	return len(actions) == 0, nil
}

// History returns the actions from the root to n, in play order.
func (n *Node) History() []game.Action {
	depth := 0
	for node := n; node.parent != nil; node = node.parent {
		depth++
	}
	history := make([]game.Action, depth)
	for node := n; node.parent != nil; node = node.parent {
		depth--
		history[depth] = node.action
	}
	return history
}

// expand attaches one child per legal action. It returns the number of children added.
func (n *Node) expand(rules game.Rules) (int, error) {
	if !n.IsLeaf() {
		return 0, fmt.Errorf("expanding a node with %d children: %w", len(n.children), game.ErrContractViolation)
	}
	actions, err := rules.LegalActions(n.History())
	if err != nil {
		return 0, err
	}
	n.children = make([]*Node, 0, len(actions))
	for _, action := range actions {
		n.children = append(n.children, newChild(n, action))
	}
	return len(n.children), nil
}

// backup records one simulation result on n and every ancestor.
func (n *Node) backup(score float64) {
	for node := n; node != nil; node = node.parent {
		node.visits++
		node.score += score
	}
}

// child returns the child reached by action, if expanded.
func (n *Node) child(action game.Action) *Node {
	for _, c := range n.children {
		if c.action == action {
			return c
		}
	}
	return nil
}

// BreadthFirst visits n and its descendants level by level until visit returns false.
func (n *Node) BreadthFirst(visit func(*Node) bool) {
	queue := []*Node{n}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if !visit(current) {
			return
		}
		queue = append(queue, current.children...)
	}
}

// DepthFirst visits n and its descendants in pre-order until visit returns false.
func (n *Node) DepthFirst(visit func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(current) {
			return
		}
		for i := len(current.children) - 1; i >= 0; i-- {
			stack = append(stack, current.children[i])
		}
	}
}

// Size counts the nodes in the subtree rooted at n.
func (n *Node) Size() int {
	size := 0
	n.BreadthFirst(func(*Node) bool {
		size++
		return true
	})
	return size
}

// Depth is the length of the longest path from n to a leaf.
func (n *Node) Depth() int {
	maxDepth := 0
	base := len(n.History())
	n.DepthFirst(func(node *Node) bool {
		if node.IsLeaf() {
			maxDepth = max(maxDepth, len(node.History())-base)
		}
		return true
	})
	return maxDepth
}
