package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"mcts/meta"
	"mcts/searcher"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	MaxIterations       int           `mapstructure:"max_iterations"`
	MaxRuntime          float64       `mapstructure:"max_runtime"` // Seconds
	ExplorationConstant float64       `mapstructure:"exploration_constant"`
	Goroutines          int           `mapstructure:"goroutines"`
	Seed                uint64        `mapstructure:"seed"`
	LogLevel            string        `mapstructure:"log_level"`
	ServerAddr          string        `mapstructure:"server_addr"`
	ExperimentDir       string        `mapstructure:"experiment_dir"`
	NumGames            int           `mapstructure:"num_games"`
}

// Load reads the optional config file at path, then MCTS_* environment
// variables, on top of the defaults in meta.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("max_iterations", meta.Iterations)
	v.SetDefault("max_runtime", meta.Runtime)
	v.SetDefault("exploration_constant", meta.Exploration)
	v.SetDefault("goroutines", meta.Goroutines)
	v.SetDefault("seed", 0)
	v.SetDefault("log_level", zerolog.InfoLevel.String())
	v.SetDefault("server_addr", meta.ServerAddr)
	v.SetDefault("experiment_dir", meta.ExperimentDir)
	v.SetDefault("num_games", meta.NumGames)

	v.SetEnvPrefix("MCTS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects budgets the searcher would panic on.
func (c *Config) Validate() error {
	switch {
	case c.MaxIterations <= 0:
		return fmt.Errorf("max_iterations must be positive, got %d: %w", c.MaxIterations, ErrInvalidConfig)
	case !(c.MaxRuntime > 0) || math.IsInf(c.MaxRuntime, 1):
		return fmt.Errorf("max_runtime must be a positive number of seconds, got %v: %w", c.MaxRuntime, ErrInvalidConfig)
	case c.ExplorationConstant <= 0:
		return fmt.Errorf("exploration_constant must be positive, got %v: %w", c.ExplorationConstant, ErrInvalidConfig)
	case c.Goroutines <= 0:
		return fmt.Errorf("goroutines must be positive, got %d: %w", c.Goroutines, ErrInvalidConfig)
	case c.NumGames <= 0:
		return fmt.Errorf("num_games must be positive, got %d: %w", c.NumGames, ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, ErrInvalidConfig)
	}
	return nil
}

func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Runtime is MaxRuntime as a duration.
func (c *Config) Runtime() time.Duration {
	return searcher.Seconds(c.MaxRuntime)
}

func (c *Config) SearchOptions() []searcher.Option {
	return []searcher.Option{
		searcher.WithIterations(c.MaxIterations),
		searcher.WithRuntime(c.MaxRuntime),
		searcher.WithExploration(c.ExplorationConstant),
		searcher.WithGoroutines(c.Goroutines),
		searcher.WithSeed(c.Seed),
	}
}
