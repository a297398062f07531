package metrics

import (
	"gonum.org/v1/gonum/stat"
)

// AgentSummary aggregates every game and move an agent played in a run.
type AgentSummary struct {
	Agent                int     `json:"agent"`
	Games                int     `json:"games"`
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	Draws                int     `json:"draws"`
	WinRate              float64 `json:"win_rate"`
	MeanEpisodes         float64 `json:"mean_episodes"`
	MeanEpisodesPerSec   float64 `json:"mean_episodes_per_sec"`
	StdDevEpisodesPerSec float64 `json:"std_dev_episodes_per_sec"`
	MeanPlayoutLength    float64 `json:"mean_playout_length"`
	MeanTreeSize         float64 `json:"mean_tree_size"`
}

// Summarize computes one summary per config, in config order. Agent1 of a game
// record plays the starting player. Draws count as half a win in WinRate.
func Summarize(configs []AgentConfig, games []GameRecord, moves []MoveRecord) []AgentSummary {
	summaries := make([]AgentSummary, len(configs))
	index := make(map[int]int, len(configs))
	for i, config := range configs {
		summaries[i].Agent = config.ID
		index[config.ID] = i
	}

	for _, g := range games {
		sides := []struct {
			agent    int
			starting bool
		}{{g.Agent1, true}, {g.Agent2, false}}
		for _, side := range sides {
			i, ok := index[side.agent]
			if !ok {
				continue
			}
			s := &summaries[i]
			s.Games++
			switch {
			case g.Winner < 0:
				s.Draws++
			case (g.Winner == g.StartingPlayer) == side.starting:
				s.Wins++
			default:
				s.Losses++
			}
		}
	}

	type samples struct {
		episodes, throughput, playoutLength, treeSize []float64
	}
	perAgent := make([]samples, len(configs))
	for _, m := range moves {
		i, ok := index[m.Agent]
		if !ok {
			continue
		}
		p := &perAgent[i]
		p.episodes = append(p.episodes, float64(m.Episodes))
		p.throughput = append(p.throughput, m.EpisodesPerSecond())
		p.playoutLength = append(p.playoutLength, m.MeanPlayoutLength())
		p.treeSize = append(p.treeSize, float64(m.TreeSize))
	}

	for i := range summaries {
		s := &summaries[i]
		if s.Games > 0 {
			s.WinRate = (float64(s.Wins) + 0.5*float64(s.Draws)) / float64(s.Games)
		}
		p := perAgent[i]
		if len(p.episodes) == 0 {
			continue
		}
		s.MeanEpisodes = stat.Mean(p.episodes, nil)
		s.MeanEpisodesPerSec = stat.Mean(p.throughput, nil)
		if len(p.throughput) > 1 {
			s.StdDevEpisodesPerSec = stat.StdDev(p.throughput, nil)
		}
		s.MeanPlayoutLength = stat.Mean(p.playoutLength, nil)
		s.MeanTreeSize = stat.Mean(p.treeSize, nil)
	}
	return summaries
}
