package filtering

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/network"
)

type mutedAuthorsFilter struct {
	authors map[int]struct{}
}

// NewMutedAuthors creates a filter that removes posts by authors configured as muted.
func NewMutedAuthors() Filter {
	return &mutedAuthorsFilter{}
}

func (f *mutedAuthorsFilter) Name() string { return "muted_authors" }

func (f *mutedAuthorsFilter) Disable(string) {}

func (f *mutedAuthorsFilter) IsEnabled() bool { return true }

func (f *mutedAuthorsFilter) Validate(cfg *Config) error {
	f.authors = make(map[int]struct{})
	if cfg == nil {
		return nil
	}
	for _, id := range cfg.MutedAuthors {
		f.authors[id] = struct{}{}
	}
	return nil
}

func (f *mutedAuthorsFilter) Apply(_ context.Context, deps Deps, posts []*network.Post) ([]*network.Post, Step, error) {
	if len(f.authors) == 0 {
		return posts, step(len(posts), posts), nil
	}

	kept, dropped := keep(posts, func(p *network.Post) bool {
		_, muted := f.authors[p.AuthorID]
		return !muted
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding posts by muted authors",
			zap.Ints("excluded_posts", dropped),
			zap.Int("posts_left", len(kept)),
		)
	}

	return kept, step(len(posts), kept), nil
}

func (f *mutedAuthorsFilter) Status() Status {
	sorted := make([]int, 0, len(f.authors))
	for id := range f.authors {
		sorted = append(sorted, id)
	}
	slices.Sort(sorted)

	ids := make([]string, 0, len(sorted))
	for _, id := range sorted {
		ids = append(ids, strconv.Itoa(id))
	}
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"muted": strings.Join(ids, ",")},
	}
}

type unknownAuthorsFilter struct {
	disabled bool
	reason   string
}

// NewUnknownAuthors creates a filter that removes posts whose author is not
// part of the network snapshot. Such posts cannot be rendered.
func NewUnknownAuthors() Filter {
	return &unknownAuthorsFilter{}
}

func (f *unknownAuthorsFilter) Name() string { return "unknown_authors" }

func (f *unknownAuthorsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *unknownAuthorsFilter) IsEnabled() bool { return !f.disabled }

func (f *unknownAuthorsFilter) Validate(*Config) error { return nil }

func (f *unknownAuthorsFilter) Apply(_ context.Context, deps Deps, posts []*network.Post) ([]*network.Post, Step, error) {
	if deps.Data == nil {
		return nil, Step{}, errors.New("network data is required to resolve authors")
	}

	known := deps.Data.UserIDs()
	kept, dropped := keep(posts, func(p *network.Post) bool {
		_, ok := known[p.AuthorID]
		return ok
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Warn("excluding posts with unknown authors",
			zap.Ints("excluded_posts", dropped),
			zap.Int("posts_left", len(kept)),
		)
	}

	return kept, step(len(posts), kept), nil
}

func (f *unknownAuthorsFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: !f.disabled, Reason: f.reason}
}
