package engine

import (
	"mcts/communication/client"
	"mcts/game"
	"mcts/searcher/agent"
)

// RemoteEngine referees a game whose players are search servers, one URL per player.
func RemoteEngine(referee game.Rules, urls map[game.Player]string, budget client.Budget) *localEngine {
	agents := make(map[game.Player]agent.Agent, len(urls))
	for player, url := range urls {
		agents[player] = client.NewAgent(url, budget)
	}
	return LocalEngine(referee, agents)
}
