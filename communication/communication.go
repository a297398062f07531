// Package communication holds the JSON messages exchanged between the search
// server and remote agents.
package communication

import (
	"mcts/export"
	"mcts/game"
)

const SearchPath = "/search"

// SearchRequest asks for a search from the position reached by History. Zero
// budget fields fall back to the server's defaults.
type SearchRequest struct {
	History             []game.Action `json:"history"`
	MaxIterations       int           `json:"max_iterations,omitempty"`
	MaxRuntime          float64       `json:"max_runtime,omitempty"` // Seconds
	ExplorationConstant float64       `json:"exploration_constant,omitempty"`
	Seed                uint64        `json:"seed,omitempty"`
	IncludeTree         bool          `json:"include_tree"`
}

type SearchResponse struct {
	RequestID string `json:"request_id"`
	export.Result
	Episodes   int    `json:"episodes"`
	TreeSize   int    `json:"tree_size"`
	StopReason string `json:"stop_reason"`
}

type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}
