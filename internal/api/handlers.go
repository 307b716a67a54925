package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/bewatu/internal/filtering"
	"github.com/spigell/bewatu/internal/network"
)

// SessionHeader carries the session id. The "session" query parameter is
// accepted as a fallback.
const SessionHeader = "X-Session-ID"

const maxBodyBytes = 1 << 20

// Service is the part of service.Service the handlers need.
type Service interface {
	Feed(ctx context.Context, sessionID string) ([]*network.Post, *network.Data, error)
	CirclePosts(ctx context.Context, sessionID string, circleID int) (*network.Circle, []*network.Post, error)
	Jobs(ctx context.Context, sessionID string) ([]*network.Job, error)
	JoinCircle(ctx context.Context, sessionID string, circleID, userID int) (*network.Circle, error)
	LeaveCircle(ctx context.Context, sessionID string, circleID, userID int) (*network.Circle, error)
	SearchCandidates(ctx context.Context, sessionID, query string) ([]*network.CandidateMatch, error)
	CreatePost(ctx context.Context, sessionID string, authorID int, content string, circleID *int) (*network.Post, error)
	Appreciate(ctx context.Context, sessionID string, postID int, kind network.AppreciationType) (*network.Post, error)
	Reset(ctx context.Context, sessionID string) error
	Filters() []filtering.Status
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	svc    Service
	store  HealthChecker
	logger *zap.Logger
}

// NewHandlers builds the handlers. store may be nil when the session backend
// has nothing to probe.
func NewHandlers(svc Service, store HealthChecker, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{svc: svc, store: store, logger: logger}
}

type FeedResponse struct {
	Posts   []*network.Post    `json:"posts"`
	Users   []*network.User    `json:"users"`
	Filters []filtering.Status `json:"filters"`
}

type CirclePostsResponse struct {
	Circle *network.Circle `json:"circle"`
	Posts  []*network.Post `json:"posts"`
}

type JobsResponse struct {
	Jobs []*network.Job `json:"jobs"`
}

type CircleMemberRequest struct {
	UserID int `json:"userId"`
}

type CandidatesRequest struct {
	Query string `json:"query"`
}

type CandidatesResponse struct {
	Query   string                    `json:"query"`
	Matches []*network.CandidateMatch `json:"matches"`
}

type CreatePostRequest struct {
	AuthorID int    `json:"authorId"`
	Content  string `json:"content"`
	CircleID *int   `json:"circleId,omitempty"`
}

type AppreciateRequest struct {
	Type network.AppreciationType `json:"type"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Feed handles GET /api/feed.
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	posts, data, err := h.svc.Feed(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, FeedResponse{
		Posts:   posts,
		Users:   data.Users,
		Filters: h.svc.Filters(),
	})
}

// CirclePosts handles GET /api/circles/{id}/posts.
func (h *Handlers) CirclePosts(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	circleID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	circle, posts, err := h.svc.CirclePosts(r.Context(), sessionID, circleID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, CirclePostsResponse{Circle: circle, Posts: posts})
}

// JoinCircle handles POST /api/circles/{id}/members.
func (h *Handlers) JoinCircle(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	circleID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req CircleMemberRequest
	if !h.decode(w, r, &req) {
		return
	}

	circle, err := h.svc.JoinCircle(r.Context(), sessionID, circleID, req.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, circle)
}

// LeaveCircle handles DELETE /api/circles/{id}/members/{userId}.
func (h *Handlers) LeaveCircle(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	circleID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	userID, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, ErrCodeBadRequest, "userId must be an integer")
		return
	}

	circle, err := h.svc.LeaveCircle(r.Context(), sessionID, circleID, userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, circle)
}

// Jobs handles GET /api/jobs.
func (h *Handlers) Jobs(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	jobs, err := h.svc.Jobs(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, JobsResponse{Jobs: jobs})
}

// SearchCandidates handles POST /api/candidates.
func (h *Handlers) SearchCandidates(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req CandidatesRequest
	if !h.decode(w, r, &req) {
		return
	}

	matches, err := h.svc.SearchCandidates(r.Context(), sessionID, req.Query)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, CandidatesResponse{Query: req.Query, Matches: matches})
}

// CreatePost handles POST /api/posts.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req CreatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	post, err := h.svc.CreatePost(r.Context(), sessionID, req.AuthorID, req.Content, req.CircleID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, post)
}

// Appreciate handles POST /api/posts/{id}/appreciations.
func (h *Handlers) Appreciate(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	postID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req AppreciateRequest
	if !h.decode(w, r, &req) {
		return
	}

	post, err := h.svc.Appreciate(r.Context(), sessionID, postID, req.Type)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, post)
}

// Reset handles DELETE /api/session.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.svc.Reset(r.Context(), sessionID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /healthz. The session backend is probed when it
// supports health checks.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Checks:    map[string]string{"runtime": "ok"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	status := http.StatusOK
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.store.HealthCheck(ctx); err != nil {
			h.logger.Warn("session store health check failed", zap.Error(err))
			response.Status = "unhealthy"
			response.Checks["session_store"] = "error"
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["session_store"] = "ok"
		}
	}

	writeJSON(w, h.logger, status, response)
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("session"))
	}
	if id == "" {
		writeError(w, h.logger, http.StatusBadRequest, ErrCodeBadRequest, "session id is required")
		return "", false
	}
	return id, true
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, ErrCodeBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
