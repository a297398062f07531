package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mcts/communication"
	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/searcher"
)

// Budget is sent with every request; zero fields use the server's defaults.
type Budget struct {
	MaxIterations       int
	MaxRuntime          time.Duration
	ExplorationConstant float64
}

// Agent plays by asking a remote search server for each move.
type Agent struct {
	serverURL string
	budget    Budget
	client    *http.Client
}

// NewAgent initializes and returns a new remote Agent.
func NewAgent(serverURL string, budget Budget) *Agent {
	return &Agent{
		serverURL: serverURL,
		budget:    budget,
		client:    &http.Client{Timeout: budget.MaxRuntime + 30*time.Second},
	}
}

func (a *Agent) Search(ctx context.Context, request communication.SearchRequest) (communication.SearchResponse, error) {
	var response communication.SearchResponse

	body, err := json.Marshal(request)
	if err != nil {
		return response, fmt.Errorf("failed to encode search request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.serverURL+communication.SearchPath, bytes.NewReader(body))
	if err != nil {
		return response, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return response, fmt.Errorf("failed to call search server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		var errResponse communication.ErrorResponse
		if json.Unmarshal(out, &errResponse) == nil && errResponse.Error != "" {
			out = []byte(errResponse.Error)
		}
		err := fmt.Errorf("search server returned status %d: %s", resp.StatusCode, out)
		if resp.StatusCode == http.StatusUnprocessableEntity {
			err = fmt.Errorf("%w: %s", game.ErrContractViolation, out)
		}
		return response, err
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return response, fmt.Errorf("failed to decode search response: %w", err)
	}
	return response, nil
}

// FindMove implements agent.Agent. Only the counters reported by the server are
// filled into the returned metric.
func (a *Agent) FindMove(ctx context.Context, history []game.Action) (game.Action, metrics.SearchMetric, error) {
	request := communication.SearchRequest{
		History:             history,
		MaxIterations:       a.budget.MaxIterations,
		ExplorationConstant: a.budget.ExplorationConstant,
	}
	if a.budget.MaxRuntime > 0 {
		request.MaxRuntime = a.budget.MaxRuntime.Seconds()
	}

	response, err := a.Search(ctx, request)
	if err != nil {
		return game.Action{}, metrics.SearchMetric{}, err
	}
	metric := metrics.SearchMetric{
		Elapsed:    time.Duration(response.Time * float64(time.Second)),
		Episodes:   response.Episodes,
		TreeSize:   response.TreeSize,
		StopReason: metrics.StopReason(response.StopReason),
	}
	if response.Solution == nil {
		return game.Action{}, metric, fmt.Errorf("after %d moves: %w", len(history), searcher.ErrNoMoveAvailable)
	}
	return *response.Solution, metric, nil
}
