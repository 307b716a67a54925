// Package service ties the session cache, the model gateway, feed filters and
// the ranking engine together. Both the CLI and the HTTP gateway use it.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/ai"
	"github.com/spigell/bewatu/internal/filtering"
	"github.com/spigell/bewatu/internal/logger"
	"github.com/spigell/bewatu/internal/network"
	"github.com/spigell/bewatu/internal/ranking"
	"github.com/spigell/bewatu/internal/session"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	errEmptyNetwork = errors.New("generator returned no network")
)

// Options configures a Service. Store and Generator are required.
type Options struct {
	Store        session.Store
	Generator    ai.NetworkGenerator
	Searcher     ai.CandidateSearcher
	Filters      []filtering.Filter
	FilterConfig *filtering.Config
	Metrics      *Metrics
	Language     string
	// CurrentUser, when set, is kept first in the user list of every snapshot.
	CurrentUser *network.User
	Logger      *zap.Logger
}

type Service struct {
	store        session.Store
	generator    ai.NetworkGenerator
	searcher     ai.CandidateSearcher
	filters      []filtering.Filter
	filterConfig *filtering.Config
	metrics      *Metrics
	language     string
	currentUser  *network.User
	logger       *zap.Logger

	// mu serialises generation and read-modify-write cycles on snapshots.
	mu sync.Mutex
	// filterMu guards filters, which keep per-run configuration.
	filterMu sync.Mutex
}

func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("network generator is required")
	}

	filters := opts.Filters
	if filters == nil {
		filters = filtering.Default()
	}

	filterConfig := opts.FilterConfig
	if filterConfig == nil {
		filterConfig = &filtering.Config{}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		store:        opts.Store,
		generator:    opts.Generator,
		searcher:     opts.Searcher,
		filters:      filters,
		filterConfig: filterConfig,
		metrics:      opts.Metrics,
		language:     opts.Language,
		currentUser:  opts.CurrentUser,
		logger:       log,
	}, nil
}

// Data returns the session snapshot, generating and caching it on a miss.
func (s *Service) Data(ctx context.Context, sessionID string) (*network.Data, error) {
	data, err := s.cached(ctx, sessionID)
	if err != nil || data != nil {
		return data, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, sessionID)
}

// load must be called with mu held.
func (s *Service) load(ctx context.Context, sessionID string) (*network.Data, error) {
	data, err := s.cached(ctx, sessionID)
	if err != nil || data != nil {
		return data, err
	}

	log := logger.WithSession(s.logger, sessionID)
	log.Info("generating network data")

	data, err = s.generator.GenerateNetwork(ctx, ai.NetworkRequest{Language: s.language})
	if err == nil && data == nil {
		err = errEmptyNetwork
	}
	if err != nil {
		s.metrics.incGeneration(KindFeed, StatusFailure)
		return nil, fmt.Errorf("generating network data: %w", err)
	}
	s.metrics.incGeneration(KindFeed, StatusSuccess)

	data.PromoteUser(s.currentUser)

	if err := s.store.Set(ctx, sessionID, data); err != nil {
		// the snapshot is still usable for this request
		log.Warn("caching network data failed", zap.Error(err))
	}

	return data, nil
}

// cached returns nil data and nil error on a cache miss.
func (s *Service) cached(ctx context.Context, sessionID string) (*network.Data, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	data, err := s.store.Get(ctx, sessionID)
	switch {
	case err == nil:
		s.metrics.incCache(CacheHit)
		return data, nil
	case errors.Is(err, session.ErrNotFound):
		s.metrics.incCache(CacheMiss)
		return nil, nil
	default:
		s.metrics.incCache(CacheMiss)
		logger.WithSession(s.logger, sessionID).Warn("dropping unreadable session cache", zap.Error(err))
		if err := s.store.Clear(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("clearing session cache: %w", err)
		}
		return nil, nil
	}
}

// Feed returns the filtered global feed ordered by time-decayed engagement
// together with the snapshot it was built from.
func (s *Service) Feed(ctx context.Context, sessionID string) ([]*network.Post, *network.Data, error) {
	data, err := s.Data(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	deps := filtering.Deps{Logger: logger.WithSession(s.logger, sessionID), Data: data}
	s.filterMu.Lock()
	posts, err := filtering.Run(ctx, s.filterConfig, deps, s.filters, data.Posts)
	s.filterMu.Unlock()
	if err != nil {
		return nil, nil, fmt.Errorf("filtering feed: %w", err)
	}

	return rankSafely(s, KindFeed, posts, ranking.RankFeed), data, nil
}

// CirclePosts returns a circle and its posts, newest first.
func (s *Service) CirclePosts(ctx context.Context, sessionID string, circleID int) (*network.Circle, []*network.Post, error) {
	data, err := s.Data(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return s.CirclePostsOf(data, circleID)
}

// CirclePostsOf is CirclePosts over a snapshot the caller already holds.
func (s *Service) CirclePostsOf(data *network.Data, circleID int) (*network.Circle, []*network.Post, error) {
	c := data.FindCircle(circleID)
	if c == nil {
		return nil, nil, fmt.Errorf("circle %d: %w", circleID, ErrNotFound)
	}

	posts := make([]*network.Post, 0)
	for _, p := range data.Posts {
		if p.InCircle() && *p.CircleID == circleID {
			posts = append(posts, p)
		}
	}

	return c, rankSafely(s, KindCircle, posts, ranking.NewestFirst), nil
}

// Jobs returns the job openings of the session in the order they were
// generated.
func (s *Service) Jobs(ctx context.Context, sessionID string) ([]*network.Job, error) {
	data, err := s.Data(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	jobs := make([]*network.Job, 0, len(data.Jobs))
	for _, j := range data.Jobs {
		if j != nil {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

// JoinCircle adds userID to the members of a circle.
func (s *Service) JoinCircle(ctx context.Context, sessionID string, circleID, userID int) (*network.Circle, error) {
	return s.updateCircle(ctx, sessionID, circleID, userID, func(c *network.Circle) (bool, error) {
		return c.AddMember(userID), nil
	})
}

// LeaveCircle removes userID from the members of a circle. The circle admin
// cannot leave.
func (s *Service) LeaveCircle(ctx context.Context, sessionID string, circleID, userID int) (*network.Circle, error) {
	return s.updateCircle(ctx, sessionID, circleID, userID, func(c *network.Circle) (bool, error) {
		if !c.HasMember(userID) {
			return false, nil
		}
		if err := c.RemoveMember(userID); err != nil {
			return false, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		return true, nil
	})
}

func (s *Service) updateCircle(ctx context.Context, sessionID string, circleID, userID int, update func(*network.Circle) (bool, error)) (*network.Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	c := data.FindCircle(circleID)
	if c == nil {
		return nil, fmt.Errorf("circle %d: %w", circleID, ErrNotFound)
	}
	if data.FindUser(userID) == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	changed, err := update(c)
	if err != nil {
		return nil, err
	}
	if !changed {
		return c, nil
	}

	if err := s.store.Set(ctx, sessionID, data); err != nil {
		return nil, fmt.Errorf("saving circle members: %w", err)
	}

	return c, nil
}

// SearchCandidates matches a recruiter query against the non-recruiter users
// of the session and orders the matches by mutual success potential.
func (s *Service) SearchCandidates(ctx context.Context, sessionID, query string) ([]*network.CandidateMatch, error) {
	if s.searcher == nil {
		return nil, errors.New("candidate search is not configured")
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}

	data, err := s.Data(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	candidates := data.Candidates()
	results, err := s.searcher.SearchCandidates(ctx, query, candidates)
	if err != nil {
		s.metrics.incGeneration(KindCandidates, StatusFailure)
		return nil, err
	}
	s.metrics.incGeneration(KindCandidates, StatusSuccess)

	matches := network.ResolveMatches(results, candidates)
	if dropped := len(results) - len(matches); dropped > 0 {
		logger.WithSession(s.logger, sessionID).Warn("dropping matches for unknown users", zap.Int("dropped", dropped))
	}

	return rankSafely(s, KindCandidates, matches, ranking.RankCandidates), nil
}

// CreatePost adds a post by authorID to the session snapshot.
func (s *Service) CreatePost(ctx context.Context, sessionID string, authorID int, content string, circleID *int) (*network.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: post content is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if data.FindUser(authorID) == nil {
		return nil, fmt.Errorf("user %d: %w", authorID, ErrNotFound)
	}
	if circleID != nil && *circleID != 0 && data.FindCircle(*circleID) == nil {
		return nil, fmt.Errorf("circle %d: %w", *circleID, ErrNotFound)
	}

	post := data.AddPost(authorID, content, circleID)
	if err := s.store.Set(ctx, sessionID, data); err != nil {
		return nil, fmt.Errorf("saving post: %w", err)
	}

	return post, nil
}

// Appreciate increments one appreciation counter of a post.
func (s *Service) Appreciate(ctx context.Context, sessionID string, postID int, kind network.AppreciationType) (*network.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	post := data.FindPost(postID)
	if post == nil {
		return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
	}

	if err := post.Appreciate(kind); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if err := s.store.Set(ctx, sessionID, data); err != nil {
		return nil, fmt.Errorf("saving appreciation: %w", err)
	}

	return post, nil
}

// Reset drops the cached snapshot so the next call regenerates it.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	return s.store.Clear(ctx, sessionID)
}

// Filters describes the configured feed filters.
func (s *Service) Filters() []filtering.Status {
	s.filterMu.Lock()
	defer s.filterMu.Unlock()
	return filtering.Describe(s.filters)
}

// rankSafely runs rank and falls back to insertion order if it panics, so a
// ranking bug never takes a page down.
func rankSafely[T any](s *Service, kind string, items []T, rank func([]T) []T) (ranked []T) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("ranking failed, falling back to insertion order",
				zap.String("kind", kind),
				zap.Any("panic", r),
			)
			s.metrics.incFallback(kind)
			ranked = slices.Clone(items)
		}
		if ranked == nil {
			ranked = make([]T, 0)
		}
		s.metrics.observeRanking(kind, len(ranked), time.Since(start).Seconds())
	}()

	return rank(items)
}
