// Package export turns a finished search into the JSON documents served over
// HTTP and written by the CLI.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"mcts/game"
	"mcts/searcher"
)

// Tree is a node without its parent link. Children is never null so viewers can
// walk it without checks.
type Tree struct {
	Action        *game.Action `json:"action"`
	Score         float64      `json:"score"`
	Visits        int          `json:"visits"`
	ExpectedValue float64      `json:"expected_value"`
	Children      []*Tree      `json:"children"`
}

// NewTree copies the subtree rooted at node down to maxDepth levels below it.
// A negative maxDepth copies everything.
func NewTree(node *searcher.Node, maxDepth int) *Tree {
	t := &Tree{
		Score:         node.Score(),
		Visits:        node.Visits(),
		ExpectedValue: node.ExpectedValue(),
		Children:      []*Tree{},
	}
	if action, ok := node.Action(); ok {
		t.Action = &action
	}
	if maxDepth == 0 {
		return t
	}
	for _, child := range node.Children() {
		t.Children = append(t.Children, NewTree(child, maxDepth-1))
	}
	return t
}

// Result is the solver output: the recommended move, the tree that produced it and
// the wall-clock search time in seconds.
type Result struct {
	Solution *game.Action `json:"solution"`
	Tree     *Tree        `json:"tree,omitempty"`
	Time     float64      `json:"time"`
}

func NewResult(result *searcher.Result, elapsed time.Duration, includeTree bool) Result {
	r := Result{Time: elapsed.Seconds()}
	if move, ok := result.BestMove(); ok {
		r.Solution = &move
	}
	if includeTree {
		r.Tree = NewTree(result.Root, -1)
	}
	return r
}

// Write encodes v as indented JSON.
func Write(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
