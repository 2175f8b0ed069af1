package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"postpilot/internal/auth"
	"postpilot/internal/linkedin"
	"postpilot/internal/posts"

	"github.com/go-chi/chi/v5"
)

type PostsHandler struct {
	Store    *posts.Store
	Pipeline *posts.Pipeline
}

type scheduleReq struct {
	Text        string     `json:"text"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Visibility  string     `json:"visibility"`
}

type postResp struct {
	ID          uint64    `json:"id"`
	Text        string    `json:"text"`
	Visibility  string    `json:"visibility"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	RemoteURN   *string   `json:"remote_urn,omitempty"`
	LastError   *string   `json:"last_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toResp(p posts.ScheduledPost) postResp {
	return postResp{
		ID:          p.ID,
		Text:        p.Text,
		Visibility:  p.Visibility,
		ScheduledAt: p.ScheduledAt,
		Status:      p.Status,
		RemoteURN:   p.RemoteURN,
		LastError:   p.LastError,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Schedule queues a post. Omitting scheduled_at means "due now"; the next
// poll cycle picks it up.
func (h *PostsHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}
	switch req.Visibility {
	case "", linkedin.VisibilityPublic, linkedin.VisibilityConnections:
	default:
		http.Error(w, "visibility must be PUBLIC or CONNECTIONS", http.StatusBadRequest)
		return
	}

	p := posts.ScheduledPost{
		UserID:     uid,
		Text:       req.Text,
		Visibility: req.Visibility,
	}
	if req.ScheduledAt != nil {
		p.ScheduledAt = *req.ScheduledAt
	}

	if err := h.Store.Enqueue(r.Context(), &p); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResp(p))
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	list, err := h.Store.ListForUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]postResp, 0, len(list))
	for _, p := range list {
		out = append(out, toResp(p))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	p, err := h.Store.GetForUser(r.Context(), id, uid)
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResp(*p))
}

// PublishNow bypasses the poll delay and publishes synchronously through the
// same claim + state machine the scheduler uses, so the loop can never
// re-claim a post published here.
func (h *PostsHandler) PublishNow(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	p, err := h.Store.GetForUser(r.Context(), id, uid)
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	urn, err := h.Pipeline.PublishNow(r.Context(), *p)
	if err != nil {
		writePublishError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":    "published",
		"remote_urn": urn,
	})
}

func writePublishError(w http.ResponseWriter, err error) {
	var rejected *linkedin.RejectedError
	var transient *linkedin.TransientError
	switch {
	case errors.Is(err, posts.ErrConflict), errors.Is(err, posts.ErrTerminal):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, linkedin.ErrNotConnected):
		http.Error(w, "linkedin not connected", http.StatusConflict)
	case errors.Is(err, linkedin.ErrExpired):
		http.Error(w, "linkedin token expired, reconnect", http.StatusUnauthorized)
	case errors.As(err, &rejected), errors.As(err, &transient):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
