package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/network"
)

// Filter represents a single filtering step applied to feed posts.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, posts []*network.Post) ([]*network.Post, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
	Data   *network.Data
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MutedAuthors []int
	HiddenFile   string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the feed filters in the order they run.
func Default() []Filter {
	return []Filter{
		NewCircles(),
		NewMutedAuthors(),
		NewUnknownAuthors(),
		NewHiddenFile(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates and then executes the enabled filters sequentially. The input
// slice is never modified.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, posts []*network.Post) ([]*network.Post, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	current := make([]*network.Post, len(posts))
	copy(current, posts)

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		current = next
	}

	return current, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the posts for which fn is true and the ids of the dropped ones.
func keep(posts []*network.Post, fn func(*network.Post) bool) ([]*network.Post, []int) {
	kept := make([]*network.Post, 0, len(posts))
	var dropped []int
	for _, p := range posts {
		if p == nil {
			continue
		}
		if fn(p) {
			kept = append(kept, p)
			continue
		}
		dropped = append(dropped, p.ID)
	}
	return kept, dropped
}

func step(initial int, kept []*network.Post) Step {
	return Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}
