package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/ai"
	"github.com/spigell/bewatu/internal/network"
	"github.com/spigell/bewatu/internal/service"
	"github.com/spigell/bewatu/internal/session"
)

type stubGenerator struct {
	calls int
}

func (s *stubGenerator) GenerateNetwork(context.Context, ai.NetworkRequest) (*network.Data, error) {
	s.calls++
	circle := 3
	return &network.Data{
		Users: []*network.User{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Rita", IsRecruiter: true}},
		Posts: []*network.Post{
			{ID: 1, AuthorID: 1, Timestamp: "3 days ago", Appreciations: network.Appreciations{Helpful: 5}},
			{ID: 2, AuthorID: 1, Timestamp: "2 hours ago", Appreciations: network.Appreciations{Helpful: 5}},
			{ID: 3, AuthorID: 1, Timestamp: "1 hour ago", CircleID: &circle},
		},
		Circles: []*network.Circle{{ID: 3, Name: "Gophers", Members: []int{1}, AdminID: 1}},
		Jobs:    []*network.Job{{ID: 10, Title: "Go engineer", Company: "Gopher Inc", RecruiterID: 2}},
	}, nil
}

type readOnlyStore struct {
	session.Store
}

func (readOnlyStore) Set(context.Context, string, *network.Data) error {
	return errors.New("read only")
}

type stubSearcher struct{}

func (stubSearcher) SearchCandidates(context.Context, string, []*network.User) ([]*network.SearchResult, error) {
	return []*network.SearchResult{{UserID: 1}}, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) HealthCheck(context.Context) error {
	return m.err
}

func newTestRouter(t *testing.T, health HealthChecker) (http.Handler, *stubGenerator) {
	t.Helper()
	return newTestRouterWithStore(t, health, session.NewMemory(time.Hour))
}

func newTestRouterWithStore(t *testing.T, health HealthChecker, store session.Store) (http.Handler, *stubGenerator) {
	t.Helper()

	gen := &stubGenerator{}
	metrics := service.NewMetrics()
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("register metrics: %v", err)
	}

	svc, err := service.New(service.Options{
		Store:     store,
		Generator: gen,
		Searcher:  stubSearcher{},
		Metrics:   metrics,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return NewRouter(NewHandlers(svc, health, zap.NewNop()), reg), gen
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set(SessionHeader, "test-session")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error
}

func TestFeed(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/feed", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp FeedResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(resp.Posts) != 2 || resp.Posts[0].ID != 2 || resp.Posts[1].ID != 1 {
		t.Fatalf("unexpected feed: %+v", resp.Posts)
	}
	if len(resp.Users) != 2 || len(resp.Filters) != 4 {
		t.Fatalf("unexpected users or filters: %d %d", len(resp.Users), len(resp.Filters))
	}
}

func TestFeedGeneratesOnceWhenCachingFails(t *testing.T) {
	router, gen := newTestRouterWithStore(t, nil, readOnlyStore{Store: session.NewMemory(time.Hour)})

	w := do(t, router, http.MethodGet, "/api/feed", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp FeedResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Posts) != 2 || len(resp.Users) != 2 {
		t.Fatalf("unexpected feed: %d posts, %d users", len(resp.Posts), len(resp.Users))
	}
	if gen.calls != 1 {
		t.Fatalf("expected a single generation for the feed, got %d", gen.calls)
	}

	w = do(t, router, http.MethodGet, "/api/circles/3/posts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gen.calls != 2 {
		t.Fatalf("expected a single generation for the circle, got %d", gen.calls-1)
	}
}

func TestFeedRequiresSession(t *testing.T) {
	router, gen := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decodeError(t, w); got.Code != ErrCodeBadRequest {
		t.Fatalf("unexpected error code: %s", got.Code)
	}
	if gen.calls != 0 {
		t.Fatal("generator must not be called without a session")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/feed?session=from-query", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected query session to be accepted, got %d", w.Code)
	}
}

func TestCirclePosts(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/circles/3/posts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp CirclePostsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Circle == nil || resp.Circle.Name != "Gophers" || len(resp.Posts) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	w = do(t, router, http.MethodGet, "/api/circles/9/posts", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/api/circles/abc/posts", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestJobs(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/jobs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp JobsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Jobs) != 1 || resp.Jobs[0].Title != "Go engineer" {
		t.Fatalf("unexpected jobs: %+v", resp.Jobs)
	}
}

func TestCircleMembers(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/api/circles/3/members", `{"userId": 2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var circle network.Circle
	if err := json.NewDecoder(w.Body).Decode(&circle); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !circle.HasMember(2) {
		t.Fatalf("expected 2 to join, got %v", circle.Members)
	}

	w = do(t, router, http.MethodDelete, "/api/circles/3/members/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	circle = network.Circle{}
	if err := json.NewDecoder(w.Body).Decode(&circle); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if circle.HasMember(2) || !circle.HasMember(1) {
		t.Fatalf("expected only 2 to leave, got %v", circle.Members)
	}

	w = do(t, router, http.MethodDelete, "/api/circles/3/members/1", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when the admin leaves, got %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/api/circles/9/members", `{"userId": 2}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown circle, got %d", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/api/circles/3/members/me", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad user id, got %d", w.Code)
	}
}

func TestSearchCandidates(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/api/candidates", `{"query": "Go engineer"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp CandidatesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].User.Name != "Ada" {
		t.Fatalf("unexpected matches: %+v", resp.Matches)
	}

	w = do(t, router, http.MethodPost, "/api/candidates", `{"query": ""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decodeError(t, w); got.Code != ErrCodeValidation {
		t.Fatalf("unexpected error code: %s", got.Code)
	}

	w = do(t, router, http.MethodPost, "/api/candidates", `{"q": 1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", w.Code)
	}
}

func TestCreatePostAndAppreciate(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := do(t, router, http.MethodPost, "/api/posts", `{"authorId": 1, "content": "Shipping today"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var post network.Post
	if err := json.NewDecoder(w.Body).Decode(&post); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if post.ID != 4 || post.Timestamp != network.JustNow {
		t.Fatalf("unexpected post: %+v", post)
	}

	w = do(t, router, http.MethodPost, "/api/posts/4/appreciations", `{"type": "collaborationReady"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"collaborationReady":1`) {
		t.Fatalf("expected counter in response: %s", w.Body.String())
	}

	w = do(t, router, http.MethodPost, "/api/posts/4/appreciations", `{"type": "likes"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", w.Code)
	}
}

func TestResetSession(t *testing.T) {
	router, gen := newTestRouter(t, nil)

	do(t, router, http.MethodGet, "/api/feed", "")
	if w := do(t, router, http.MethodDelete, "/api/session", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	do(t, router, http.MethodGet, "/api/feed", "")

	if gen.calls != 2 {
		t.Fatalf("expected regeneration after reset, got %d calls", gen.calls)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, &mockHealthChecker{})
	if w := do(t, router, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	router, _ = newTestRouter(t, &mockHealthChecker{err: errors.New("redis down")})
	w := do(t, router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Checks["session_store"] != "error" {
		t.Fatalf("unexpected checks: %+v", resp.Checks)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	do(t, router, http.MethodGet, "/api/feed", "")
	w := do(t, router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), service.MetricRankedItemsTotal) {
		t.Fatalf("expected ranking metrics to be exposed")
	}
}
