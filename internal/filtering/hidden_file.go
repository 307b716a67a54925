package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/network"
)

// HiddenPosts is the content of a hidden posts file.
type HiddenPosts struct {
	Items []*HiddenPost
}

type HiddenPost struct {
	ID       int
	AuthorID int
	HiddenAt time.Time
}

// LoadHiddenPosts reads a hidden posts file. A missing or empty file yields
// an empty list.
func LoadHiddenPosts(path string) (*HiddenPosts, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &HiddenPosts{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &HiddenPosts{}, nil
	}

	var hidden HiddenPosts
	if err := json.NewDecoder(file).Decode(&hidden); err != nil {
		return nil, err
	}
	return &hidden, nil
}

// Hide adds posts to the list, skipping ones that are already hidden.
func (h *HiddenPosts) Hide(posts ...*network.Post) {
	known := h.IDs()
	for _, p := range posts {
		if p == nil {
			continue
		}
		if _, ok := known[p.ID]; ok {
			continue
		}
		known[p.ID] = struct{}{}
		h.Items = append(h.Items, &HiddenPost{ID: p.ID, AuthorID: p.AuthorID, HiddenAt: time.Now().UTC()})
	}
}

func (h *HiddenPosts) IDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(h.Items))
	for _, item := range h.Items {
		if item != nil {
			ids[item.ID] = struct{}{}
		}
	}
	return ids
}

func (h *HiddenPosts) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(h)
}

type hiddenFileFilter struct {
	path string
}

// NewHiddenFile creates a filter that removes posts listed in the hidden posts file.
func NewHiddenFile() Filter {
	return &hiddenFileFilter{}
}

func (f *hiddenFileFilter) Name() string { return "hidden_file" }

func (f *hiddenFileFilter) Disable(string) {}

func (f *hiddenFileFilter) IsEnabled() bool { return true }

func (f *hiddenFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = cfg.HiddenFile
	}
	return nil
}

func (f *hiddenFileFilter) Apply(_ context.Context, deps Deps, posts []*network.Post) ([]*network.Post, Step, error) {
	if f.path == "" {
		return posts, step(len(posts), posts), nil
	}

	hidden, err := LoadHiddenPosts(f.path)
	if err != nil {
		return nil, Step{}, fmt.Errorf("getting hidden posts from file: %w", err)
	}

	ids := hidden.IDs()
	kept, dropped := keep(posts, func(p *network.Post) bool {
		_, ok := ids[p.ID]
		return !ok
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding hidden posts",
			zap.String("file", f.path),
			zap.Ints("excluded_posts", dropped),
		)
	}

	return kept, step(len(posts), kept), nil
}

func (f *hiddenFileFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{"file": f.path}}
}
