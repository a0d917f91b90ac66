package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fortuna/florbal-stats/internal/gateway"
	"github.com/fortuna/florbal-stats/internal/tracking"
)

// Dependencies are the services the REST API exposes
type Dependencies struct {
	Florbal  RosterSource
	Gateway  http.Handler
	History  MatchHistory
	Sessions *tracking.Registry
	Checks   map[string]HealthChecker
}

// Server represents the REST API server
type Server struct {
	port   string
	server *http.Server
}

// NewRouter builds the API routes
func NewRouter(deps Dependencies) *mux.Router {
	handler := NewHandler(deps.Florbal, deps.Checks)
	completed := NewCompletedHandler(deps.History)
	live := NewLiveHandler(deps.Sessions, deps.Florbal, deps.History)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Upstream gateway
	if deps.Gateway != nil {
		router.PathPrefix(gateway.Prefix + "/").Handler(deps.Gateway)
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Federation data
	api.HandleFunc("/teams/search", handler.SearchTeams).Methods("GET")
	api.HandleFunc("/teams/{teamID}/matches", handler.GetTeamMatches).Methods("GET")
	api.HandleFunc("/matches/{matchID}/roster", handler.GetMatchRoster).Methods("GET")

	// Completed matches
	api.HandleFunc("/completed", completed.ListMatches).Methods("GET")
	api.HandleFunc("/completed", completed.DeleteAllMatches).Methods("DELETE")
	api.HandleFunc("/completed/aggregate", completed.Aggregate).Methods("GET")
	api.HandleFunc("/completed/last-roster", completed.LastRoster).Methods("GET")
	api.HandleFunc("/completed/{id}", completed.GetMatch).Methods("GET")
	api.HandleFunc("/completed/{id}", completed.PutMatch).Methods("PUT")
	api.HandleFunc("/completed/{id}", completed.DeleteMatch).Methods("DELETE")

	// Live tracking
	api.HandleFunc("/live", live.StartSession).Methods("POST")
	api.HandleFunc("/live", live.ListSessions).Methods("GET")
	api.HandleFunc("/live/{id}", live.GetSession).Methods("GET")
	api.HandleFunc("/live/{id}/stat", live.TapStat).Methods("POST")
	api.HandleFunc("/live/{id}/score", live.TapScore).Methods("POST")
	api.HandleFunc("/live/{id}/reset", live.Reset).Methods("POST")
	api.HandleFunc("/live/{id}/players", live.AddPlayer).Methods("POST")
	api.HandleFunc("/live/{id}/players/{playerID}", live.RemovePlayer).Methods("DELETE")
	api.HandleFunc("/live/{id}/players/{playerID}/line", live.AssignLine).Methods("PUT")
	api.HandleFunc("/live/{id}/finish", live.FinishSession).Methods("POST")

	// CORS preflight
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	return router
}

// NewServer creates a new REST API server
func NewServer(port string, deps Dependencies) *Server {
	return &Server{
		port: port,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: NewRouter(deps),
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
