package searcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mcts/experiments/metrics"
	"mcts/game"
	"mcts/meta"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// ErrNoMoveAvailable is returned by callers that need a move when the search
// produced none: the root was terminal or no iteration ran.
var ErrNoMoveAvailable = errors.New("no move available")

type Option func(mcts *MCTS)

type MCTS struct {
	goroutines  int
	iterations  int
	duration    time.Duration
	exploration float64
	seed        uint64
	metrics     metrics.Collector
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		m.iterations = iterations
	}
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		m.duration = duration
	}
}

// WithRuntime sets the wall-clock budget in seconds.
func WithRuntime(seconds float64) Option {
	return func(m *MCTS) {
		m.duration = Seconds(seconds)
	}
}

// Seconds converts a real number of seconds to a duration.
func Seconds(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// WithExploration sets the UCB1 exploration constant C.
func WithExploration(c float64) Option {
	return func(m *MCTS) {
		m.exploration = c
	}
}

// WithGoroutines grows that many independent trees and merges them after the search.
func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		m.goroutines = goroutines
	}
}

// WithSeed fixes the random source. Zero picks a time-based seed per search.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:  meta.Goroutines,
		iterations:  meta.Iterations,
		duration:    Seconds(meta.Runtime),
		exploration: meta.Exploration,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.iterations <= 0 || m.duration <= 0 {
		panic("Must specify positive search iterations and duration")
	}
	if m.exploration <= 0 {
		panic("Exploration constant must be positive")
	}
	if m.goroutines <= 0 {
		panic("Must use at least one goroutine")
	}
	return m
}

// Result is a finished search. The tree is read-only from here on.
type Result struct {
	Root   *Node
	Metric metrics.SearchMetric
}

// BestChild is the root child with the highest average score. Ties keep the
// first child found; nil if the root was never expanded.
func (r *Result) BestChild() *Node {
	var best *Node
	for _, child := range r.Root.children {
		if best == nil || child.ExpectedValue() > best.ExpectedValue() {
			best = child
		}
	}
	return best
}

// BestMove returns the recommended first action, or false if there is none.
func (r *Result) BestMove() (game.Action, bool) {
	best := r.BestChild()
	if best == nil {
		return game.Action{}, false
	}
	return best.action, true
}

// Policy maps each root action to its visit count.
func (r *Result) Policy() map[game.Action]int {
	policy := make(map[game.Action]int, len(r.Root.children))
	for _, child := range r.Root.children {
		policy[child.action] = child.visits
	}
	return policy
}

// Search grows a tree rooted at the initial position of rules until a budget
// runs out or ctx is cancelled. Both are checked between iterations only.
// Errors from rules abort the search and are returned wrapped.
func (m *MCTS) Search(ctx context.Context, rules game.Rules) (*Result, error) {
	m.metrics.Start(metrics.SearchConfig{
		Goroutines:  m.goroutines,
		Iterations:  m.iterations,
		Duration:    m.duration,
		Exploration: m.exploration,
	})

	seed := m.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var (
		root   *Node
		reason metrics.StopReason
		err    error
	)
	if m.goroutines == 1 {
		root, reason, err = m.grow(ctx, rules, rand.New(rand.NewSource(seed)))
	} else {
		root, reason, err = m.growParallel(ctx, rules, seed)
	}
	if err != nil {
		return nil, err
	}

	metric := m.metrics.Complete(reason, root.Size(), root.Depth())
	log.Debug().
		Int("visits", root.visits).
		Int("children", len(root.children)).
		Str("stop", string(reason)).
		Dur("elapsed", metric.Elapsed).
		Msg("search complete")

	return &Result{Root: root, Metric: metric}, nil
}

func (m *MCTS) grow(ctx context.Context, rules game.Rules, rng *rand.Rand) (*Node, metrics.StopReason, error) {
	root := newRoot()
	sel := newSelector(m.exploration, rules.Maximizer(), rng)
	start := time.Now()

	for i := 0; ; i++ {
		switch {
		case i >= m.iterations:
			return root, metrics.StopIterations, nil
		case time.Since(start) > m.duration:
			return root, metrics.StopDuration, nil
		case ctx.Err() != nil:
			return root, metrics.StopCancelled, nil
		}

		if err := m.simulate(root, rules, sel, rng); err != nil {
			return nil, metrics.StopError, fmt.Errorf("search iteration %d: %w", i, err)
		}
		m.metrics.AddEpisode()
	}
}

func (m *MCTS) simulate(root *Node, rules game.Rules, sel *selector, rng *rand.Rand) error {
	newNode, err := m.selectThenExpand(root, rules, sel)
	if err != nil {
		return err
	}
	score, err := rollout(newNode, rules, rng, m.metrics)
	if err != nil {
		return err
	}
	newNode.backup(score)
	return nil
}

// selectThenExpand descends to a leaf, expands it if possible and then picks one
// of the new children so the rollout starts below the expanded node.
func (m *MCTS) selectThenExpand(root *Node, rules game.Rules, sel *selector) (*Node, error) {
	node := root
	var err error
	for !node.IsLeaf() {
		if node, err = sel.pick(node); err != nil {
			return nil, err
		}
	}

	added, err := node.expand(rules)
	if err != nil {
		return nil, err
	}
	if added == 0 { // Terminal leaf
		return node, nil
	}
	m.metrics.AddExpansion()
	return sel.pick(node)
}

// growParallel runs one independent tree per goroutine and merges them by action.
func (m *MCTS) growParallel(ctx context.Context, rules game.Rules, seed uint64) (*Node, metrics.StopReason, error) {
	roots := make([]*Node, m.goroutines)
	reasons := make([]metrics.StopReason, m.goroutines)

	g := errgroup.Group{}
	for i := 0; i < m.goroutines; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + uint64(i)))
			var err error
			roots[i], reasons[i], err = m.grow(ctx, rules, rng)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, metrics.StopError, err
	}

	for _, other := range roots[1:] {
		merge(roots[0], other)
	}
	return roots[0], reasons[0], nil
}

// merge folds src's statistics into dst. Matching children are merged
// recursively; children only src expanded are moved over.
func merge(dst, src *Node) {
	dst.visits += src.visits
	dst.score += src.score

	for _, srcChild := range src.children {
		if dstChild := dst.child(srcChild.action); dstChild != nil {
			merge(dstChild, srcChild)
			continue
		}
		srcChild.parent = dst
		dst.children = append(dst.children, srcChild)
	}
	src.children = nil
}
