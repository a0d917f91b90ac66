package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
	"github.com/fortuna/florbal-stats/internal/service"
)

const (
	serviceName    = "florbal-stats"
	serviceVersion = "1.0.0"
)

// RosterSource fetches federation data as tagged results.
type RosterSource interface {
	LoadRoster(ctx context.Context, matchID string) florbal.Result[florbal.MatchRoster]
	LoadTeamMatches(ctx context.Context, teamID string) florbal.Result[[]florbal.MatchListItem]
	SearchTeams(ctx context.Context, query string) florbal.Result[[]florbal.TeamSearchResult]
}

// HealthChecker is a dependency reported by the health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	florbal RosterSource
	checks  map[string]HealthChecker
	now     func() time.Time
}

// NewHandler creates a new handler
func NewHandler(source RosterSource, checks map[string]HealthChecker) *Handler {
	return &Handler{
		florbal: source,
		checks:  checks,
		now:     time.Now,
	}
}

// HealthCheck reports the service and its dependencies
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.HealthCheck(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status":       status,
		"service":      serviceName,
		"version":      serviceVersion,
		"dependencies": deps,
	})
}

// SearchTeams searches the federation team directory
func (h *Handler) SearchTeams(w http.ResponseWriter, r *http.Request) {
	res := h.florbal.SearchTeams(r.Context(), r.URL.Query().Get("q"))
	respondResult(w, res.OK, res.Kind, res)
}

// GetTeamMatches returns a team's fixtures; order=schedule sorts them for picking
// the next match
func (h *Handler) GetTeamMatches(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamID"]

	res := h.florbal.LoadTeamMatches(r.Context(), teamID)
	if res.OK && r.URL.Query().Get("order") == "schedule" {
		res.Data = service.SortMatchList(res.Data, h.now())
	}
	respondResult(w, res.OK, res.Kind, res)
}

// GetMatchRoster returns both rosters of a match
func (h *Handler) GetMatchRoster(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["matchID"]

	res := h.florbal.LoadRoster(r.Context(), matchID)
	respondResult(w, res.OK, res.Kind, res)
}

// statusForKind maps a failure kind to the HTTP status of the response
func statusForKind(kind florbal.Kind) int {
	switch kind {
	case florbal.KindValidation:
		return http.StatusBadRequest
	case florbal.KindTransport, florbal.KindHTTP:
		return http.StatusBadGateway
	case florbal.KindEmptyResult:
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

// respondResult writes a tagged result; the body is the result itself either way
func respondResult(w http.ResponseWriter, ok bool, kind florbal.Kind, result interface{}) {
	status := http.StatusOK
	if !ok {
		status = statusForKind(kind)
	}
	respondJSON(w, status, result)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}
