package metrics

import (
	"sync/atomic"
	"time"
)

// StopReason tells why a search loop ended.
type StopReason string

const (
	StopNone       StopReason = ""
	StopIterations StopReason = "iterations"
	StopDuration   StopReason = "duration"
	StopCancelled  StopReason = "cancelled"
	StopError      StopReason = "error"
)

// SearchConfig is the budget a search was started with.
type SearchConfig struct {
	Goroutines  int
	Iterations  int
	Duration    time.Duration
	Exploration float64
}

type SearchMetric struct {
	SearchConfig
	Elapsed      time.Duration
	Episodes     int
	Playouts     int
	PlayoutMoves int
	Expansions   int
	TreeSize     int
	MaxDepth     int
	StopReason   StopReason
}

// MeanPlayoutLength is the average number of random moves per rollout.
func (m SearchMetric) MeanPlayoutLength() float64 {
	if m.Playouts == 0 {
		return 0
	}
	return float64(m.PlayoutMoves) / float64(m.Playouts)
}

// EpisodesPerSecond is the search throughput.
func (m SearchMetric) EpisodesPerSecond() float64 {
	if m.Elapsed <= 0 {
		return 0
	}
	return float64(m.Episodes) / m.Elapsed.Seconds()
}

type MoveMetric struct {
	Step   int
	Player int
	Target int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winner         int // -1 for a draw
	Score          float64
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

// Collector gathers counters during a search. Implementations must be safe for
// concurrent use by root-parallel workers.
type Collector interface {
	Start(config SearchConfig)
	AddEpisode()
	AddPlayout(moves int)
	AddExpansion()
	Complete(reason StopReason, treeSize, maxDepth int) SearchMetric
}

type collector struct {
	config       SearchConfig
	startTime    time.Time
	episodes     atomic.Int32
	playouts     atomic.Int32
	playoutMoves atomic.Int64
	expansions   atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(config SearchConfig) {
	m.config = config
	m.startTime = time.Now()
	m.episodes.Store(0)
	m.playouts.Store(0)
	m.playoutMoves.Store(0)
	m.expansions.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddPlayout(moves int) {
	m.playouts.Add(1)
	m.playoutMoves.Add(int64(moves))
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) Complete(reason StopReason, treeSize, maxDepth int) SearchMetric {
	return SearchMetric{
		SearchConfig: m.config,
		Elapsed:      time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		Playouts:     int(m.playouts.Load()),
		PlayoutMoves: int(m.playoutMoves.Load()),
		Expansions:   int(m.expansions.Load()),
		TreeSize:     treeSize,
		MaxDepth:     maxDepth,
		StopReason:   reason,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(config SearchConfig) {}
func (m *dummyCollector) AddEpisode()               {}
func (m *dummyCollector) AddPlayout(moves int)      {}
func (m *dummyCollector) AddExpansion()             {}
func (m *dummyCollector) Complete(reason StopReason, treeSize, maxDepth int) SearchMetric {
	return SearchMetric{StopReason: reason}
}
