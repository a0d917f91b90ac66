package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/florbal-stats/internal/service"
	"github.com/fortuna/florbal-stats/internal/store"
)

// MatchHistory is the completed match archive.
type MatchHistory interface {
	Save(ctx context.Context, match *store.CompletedMatch) error
	List(ctx context.Context) ([]*store.CompletedMatch, error)
	Get(ctx context.Context, id string) (*store.CompletedMatch, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
	Aggregate(ctx context.Context, teamName, competition string) (*service.Aggregate, error)
	LastRoster(ctx context.Context) ([]store.PlayerStats, error)
}

// CompletedHandler serves the completed match archive.
type CompletedHandler struct {
	history MatchHistory
	now     func() time.Time
}

// NewCompletedHandler wires the REST layer to the match archive.
func NewCompletedHandler(history MatchHistory) *CompletedHandler {
	return &CompletedHandler{history: history, now: time.Now}
}

// ListMatches handles GET /api/v1/completed
func (h *CompletedHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.history.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list matches", err)
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

// GetMatch handles GET /api/v1/completed/{id}
func (h *CompletedHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	match, err := h.history.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Match not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch match", err)
		return
	}
	respondJSON(w, http.StatusOK, match)
}

// PutMatch handles PUT /api/v1/completed/{id}; an existing match is replaced in place
func (h *CompletedHandler) PutMatch(w http.ResponseWriter, r *http.Request) {
	var match store.CompletedMatch
	if err := json.NewDecoder(r.Body).Decode(&match); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	match.ID = mux.Vars(r)["id"]
	if match.Date.IsZero() {
		match.Date = h.now()
	}

	if err := h.history.Save(r.Context(), &match); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save match", err)
		return
	}
	respondJSON(w, http.StatusOK, match)
}

// DeleteMatch handles DELETE /api/v1/completed/{id}
func (h *CompletedHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete match", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllMatches handles DELETE /api/v1/completed
func (h *CompletedHandler) DeleteAllMatches(w http.ResponseWriter, r *http.Request) {
	n, err := h.history.DeleteAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete matches", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": n})
}

// Aggregate handles GET /api/v1/completed/aggregate?team=&competition=
func (h *CompletedHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	agg, err := h.history.Aggregate(r.Context(), q.Get("team"), q.Get("competition"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to aggregate stats", err)
		return
	}
	respondJSON(w, http.StatusOK, agg)
}

// LastRoster handles GET /api/v1/completed/last-roster
func (h *CompletedHandler) LastRoster(w http.ResponseWriter, r *http.Request) {
	players, err := h.history.LastRoster(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No completed match yet", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load last roster", err)
		return
	}
	respondJSON(w, http.StatusOK, players)
}
