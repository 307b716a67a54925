package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/network"
)

type circlesFilter struct{}

// NewCircles creates a filter that removes posts shared inside a circle.
// Circle posts belong to circle pages, never to the global feed.
func NewCircles() Filter {
	return &circlesFilter{}
}

func (f *circlesFilter) Name() string { return "circles" }

func (f *circlesFilter) Disable(string) {}

func (f *circlesFilter) IsEnabled() bool { return true }

func (f *circlesFilter) Validate(*Config) error { return nil }

func (f *circlesFilter) Apply(_ context.Context, deps Deps, posts []*network.Post) ([]*network.Post, Step, error) {
	kept, dropped := keep(posts, func(p *network.Post) bool { return !p.InCircle() })
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding circle posts from the global feed",
			zap.Ints("excluded_posts", dropped),
			zap.Int("posts_left", len(kept)),
		)
	}

	return kept, step(len(posts), kept), nil
}

func (f *circlesFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
