package experiments

import (
	"context"
	"fmt"
	"time"

	"mcts/engine"
	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/game/tictactoe"
	"mcts/searcher"
	"mcts/searcher/agent"

	"github.com/rs/zerolog/log"
)

// Settings are shared by every experiment.
type Settings struct {
	Dir        string
	NumGames   int // Per match up
	Iterations int
	Duration   time.Duration
	Seed       uint64
}

// RunParallelizationExperiment pairs root-parallel agents against the sequential baseline.
func RunParallelizationExperiment(ctx context.Context, settings Settings) (*metrics.Writer, error) {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Iterations: settings.Iterations, Duration: settings.Duration}
	configs := []metrics.AgentConfig{baseline}
	for i, goroutines := range []int{2, 4, 8} {
		config := baseline
		config.ID = i + 1
		config.Goroutines = goroutines
		configs = append(configs, config)
	}
	return runExperiment(ctx, "parallelization", settings, configs, againstBaseline(configs))
}

// RunExplorationExperiment pairs agents with different exploration constants against C = 1.5.
func RunExplorationExperiment(ctx context.Context, settings Settings) (*metrics.Writer, error) {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Iterations: settings.Iterations, Duration: settings.Duration, Exploration: 1.5}
	configs := []metrics.AgentConfig{baseline}
	for i, c := range []float64{0.25, 0.7, 1.0, 2.5} {
		config := baseline
		config.ID = i + 1
		config.Exploration = c
		configs = append(configs, config)
	}
	return runExperiment(ctx, "exploration", settings, configs, againstBaseline(configs))
}

// RunThroughputExperiment uses the same config for both players in each game
// for the same playing strength and similar game length.
func RunThroughputExperiment(ctx context.Context, settings Settings) (*metrics.Writer, error) {
	configs := []metrics.AgentConfig{}
	matchUps := [][2]metrics.AgentConfig{}
	for i, goroutines := range []int{1, 2, 4, 8, 16} {
		config := metrics.AgentConfig{ID: i + 1, Goroutines: goroutines, Iterations: settings.Iterations, Duration: settings.Duration}
		configs = append(configs, config)
		matchUps = append(matchUps, [2]metrics.AgentConfig{config, config})
	}
	return runExperiment(ctx, "throughput", settings, configs, matchUps)
}

// againstBaseline pairs configs[0] with every other config.
func againstBaseline(configs []metrics.AgentConfig) [][2]metrics.AgentConfig {
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs[1:] {
		matchUps = append(matchUps, [2]metrics.AgentConfig{configs[0], config})
	}
	return matchUps
}

func runExperiment(ctx context.Context, name string, settings Settings, configs []metrics.AgentConfig, matchUps [][2]metrics.AgentConfig) (*metrics.Writer, error) {
	writer, err := metrics.NewWriter(settings.Dir, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment writer: %w", err)
	}

	setup := metrics.Setup{
		Name:     name,
		NumGames: settings.NumGames,
		Seed:     settings.Seed,
		Configs:  configs,
		Started:  time.Now().UTC(),
	}
	for _, matchUp := range matchUps {
		setup.MatchUps = append(setup.MatchUps, [2]int{matchUp[0].ID, matchUp[1].ID})
	}
	if err := writer.WriteSetup(setup); err != nil {
		return nil, err
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return nil, fmt.Errorf("failed to store agent configs: %w", err)
	}

	log.Info().Str("run_id", writer.RunID).Msgf("starting %s experiment...", name)

	// Run a number of games for each matchup
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	for mi, matchUp := range matchUps {
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), matchUp[0], matchUp[1])

		for i := 0; i < settings.NumGames; i++ {
			// Alternate which agent starts
			first, second := matchUp[0], matchUp[1]
			if i%2 == 1 {
				first, second = second, first
			}
			count++
			seed := settings.Seed + uint64(count)*2

			gameMetric, moveMetrics, err := runGame(ctx, first, second, seed)
			if err != nil {
				return nil, fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     first.ID,
				Agent2:     second.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				agentID := second.ID
				if mm.Player == gameMetric.StartingPlayer {
					agentID = first.ID
				}
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					Agent:      agentID,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winner: %d", mi+1, len(matchUps), i+1, gameMetric.Winner)
		}
	}

	log.Info().Msgf("completed %s experiment", name)

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return nil, fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return nil, fmt.Errorf("failed to write move records: %w", err)
	}
	if err := writer.WriteSummary(metrics.Summarize(configs, gameRecords, moveRecords)); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment results")
	return writer, nil
}

// runGame plays one game where first moves as X.
func runGame(ctx context.Context, first, second metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	agents := map[game.Player]agent.Agent{
		tictactoe.PlayerX: createAgent(first, tictactoe.PlayerX, seed),
		tictactoe.PlayerO: createAgent(second, tictactoe.PlayerO, seed+1),
	}
	e := engine.LocalEngine(tictactoe.NewRules(tictactoe.PlayerX), agents)
	return e.Run(ctx)
}

func createAgent(config metrics.AgentConfig, player game.Player, seed uint64) agent.Agent {
	mcts := createMCTS(config, seed)
	rules := tictactoe.NewRules(player)
	if config.Temperature > 0 {
		return agent.NewTrainingAgent(mcts, rules, config.Temperature, seed)
	}
	return agent.NewEvaluationAgent(mcts, rules)
}

func createMCTS(config metrics.AgentConfig, seed uint64) *searcher.MCTS {
	options := []searcher.Option{searcher.WithSeed(seed)}

	if config.Goroutines > 0 {
		options = append(options, searcher.WithGoroutines(config.Goroutines))
	}
	if config.Iterations > 0 {
		options = append(options, searcher.WithIterations(config.Iterations))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}

	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(options...)
}
