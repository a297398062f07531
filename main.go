package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"mcts/communication/server"
	"mcts/config"
	"mcts/engine"
	"mcts/experiments"
	"mcts/export"
	"mcts/game"
	"mcts/game/tictactoe"
	"mcts/player"
	"mcts/searcher"
	"mcts/searcher/agent"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	mode := flag.String("mode", "search", "One of search, play, serve, experiment")
	configPath := flag.String("config", "", "Optional YAML or JSON config file")
	moves := flag.String("history", "", "Comma separated cells (0-8) already played, X first")
	tree := flag.Bool("tree", false, "Include the search tree in the search output")
	human := flag.String("human", "X", "Mark played by the human in play mode")
	experiment := flag.String("experiment", "parallelization", "One of parallelization, exploration, throughput")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch *mode {
	case "search":
		err = runSearch(ctx, cfg, *moves, *tree)
	case "play":
		err = runPlay(ctx, cfg, *human)
	case "serve":
		limits := server.Limits{MaxIterations: cfg.MaxIterations, MaxRuntime: cfg.MaxRuntime}
		err = server.NewServer(tictactoe.RulesFor, limits, cfg.SearchOptions()...).Run(ctx, cfg.ServerAddr)
	case "experiment":
		err = runExperiment(ctx, cfg, *experiment)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

func parseHistory(moves string) ([]game.Action, error) {
	history := []game.Action{}
	if strings.TrimSpace(moves) == "" {
		return history, nil
	}
	for i, field := range strings.Split(moves, ",") {
		cell, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid cell %q: %w", field, err)
		}
		history = append(history, game.Action{Mover: game.Player(i % 2), Target: cell})
	}
	return history, nil
}

// runSearch prints the solver result for the position reached by moves as JSON.
func runSearch(ctx context.Context, cfg *config.Config, moves string, includeTree bool) error {
	history, err := parseHistory(moves)
	if err != nil {
		return err
	}
	rules, err := tictactoe.RulesFor(history)
	if err != nil {
		return err
	}

	start := time.Now()
	options := append(cfg.SearchOptions(), searcher.WithMetrics())
	result, err := searcher.NewMCTS(options...).Search(ctx, game.Continue(rules, history))
	if err != nil {
		return err
	}
	log.Info().
		Int("episodes", result.Metric.Episodes).
		Int("tree_size", result.Metric.TreeSize).
		Str("stop", string(result.Metric.StopReason)).
		Msg("search finished")
	return export.Write(os.Stdout, export.NewResult(result, time.Since(start), includeTree))
}

// runPlay pits a human at the terminal against the evaluation agent.
func runPlay(ctx context.Context, cfg *config.Config, mark string) error {
	humanPlayer := tictactoe.PlayerX
	switch strings.ToUpper(mark) {
	case "X":
	case "O":
		humanPlayer = tictactoe.PlayerO
	default:
		return fmt.Errorf("unknown mark %q", mark)
	}
	searchPlayer := tictactoe.PlayerO
	if humanPlayer == tictactoe.PlayerO {
		searchPlayer = tictactoe.PlayerX
	}

	agents := map[game.Player]agent.Agent{
		humanPlayer:  player.NewHuman(humanPlayer, os.Stdin, os.Stdout),
		searchPlayer: agent.NewEvaluationAgent(searcher.NewMCTS(cfg.SearchOptions()...), tictactoe.NewRules(searchPlayer)),
	}
	e := engine.LocalEngine(tictactoe.NewRules(humanPlayer), agents)
	gameMetric, _, err := e.Run(ctx)
	if err != nil {
		return err
	}

	out := termenv.NewOutput(os.Stdout)
	b, err := tictactoe.Replay(e.History())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, player.Render(out, b))
	switch game.OutcomeOf(gameMetric.Score) {
	case game.Win:
		fmt.Fprintln(out, out.String("You win!").Bold())
	case game.Loss:
		fmt.Fprintln(out, out.String("You lose.").Bold())
	default:
		fmt.Fprintln(out, out.String("Draw.").Bold())
	}
	return nil
}

func runExperiment(ctx context.Context, cfg *config.Config, name string) error {
	settings := experiments.Settings{
		Dir:        cfg.ExperimentDir,
		NumGames:   cfg.NumGames,
		Iterations: cfg.MaxIterations,
		Duration:   cfg.Runtime(),
		Seed:       cfg.Seed,
	}
	var err error
	switch name {
	case "parallelization":
		_, err = experiments.RunParallelizationExperiment(ctx, settings)
	case "exploration":
		_, err = experiments.RunExplorationExperiment(ctx, settings)
	case "throughput":
		_, err = experiments.RunThroughputExperiment(ctx, settings)
	default:
		err = fmt.Errorf("unknown experiment %q", name)
	}
	return err
}
