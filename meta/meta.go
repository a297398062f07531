// meta/meta.go
package meta

// Iterations defines the default number of search episodes per move.
const Iterations = 1000

// Runtime defines the default wall-clock budget per move, in seconds.
const Runtime = 1.0

// Exploration defines the default UCB1 exploration constant C.
const Exploration = 1.5

// Goroutines defines the default number of independent search trees.
const Goroutines = 1

// NumGames defines the default number of games per experiment matchup.
const NumGames = 10

// ServerAddr defines the default listen address of the search service.
const ServerAddr = ":8080"

// ExperimentDir defines where experiment records are written.
const ExperimentDir = "experiments/results"
