package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
	"github.com/fortuna/florbal-stats/internal/store"
	"github.com/fortuna/florbal-stats/internal/tracking"
)

// LiveHandler serves live match tracking sessions.
type LiveHandler struct {
	sessions *tracking.Registry
	florbal  RosterSource
	history  MatchHistory
}

// NewLiveHandler creates a live session handler
func NewLiveHandler(sessions *tracking.Registry, source RosterSource, history MatchHistory) *LiveHandler {
	return &LiveHandler{sessions: sessions, florbal: source, history: history}
}

type manualPlayer struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

type startRequest struct {
	// MatchID loads the roster of Side ("home" or "away") from the federation.
	MatchID string `json:"matchId"`
	Side    string `json:"side"`

	// ReuseLastRoster starts from the players of the latest completed match.
	ReuseLastRoster bool `json:"reuseLastRoster"`

	Players []manualPlayer `json:"players"`

	Label       string `json:"label"`
	TeamName    string `json:"teamName"`
	Competition string `json:"competition"`
	MatchDate   string `json:"matchDate"`
}

type statRequest struct {
	PlayerID string        `json:"playerId"`
	Stat     tracking.Stat `json:"stat"`
}

type scoreRequest struct {
	Side tracking.Side `json:"side"`
}

type resetRequest struct {
	Target string `json:"target"`
}

type lineRequest struct {
	LineID string `json:"lineId"`
}

// StartSession handles POST /api/v1/live
func (h *LiveHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var session *tracking.Session
	switch {
	case req.MatchID != "":
		res := h.florbal.LoadRoster(r.Context(), req.MatchID)
		if !res.OK {
			respondResult(w, false, res.Kind, res)
			return
		}
		team, opponent := res.Data.Home, res.Data.Away
		if strings.EqualFold(req.Side, "away") {
			team, opponent = opponent, team
		}
		label := req.Label
		if label == "" {
			label = tracking.MatchLabel(team.TeamName, opponent.TeamName, req.MatchID)
		}
		session = tracking.NewSession(label, team.TeamName, req.Competition, team.Players)

	case req.ReuseLastRoster:
		players, err := h.history.LastRoster(r.Context())
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "No completed match to reuse", err)
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to load last roster", err)
			return
		}
		session = tracking.NewSessionWithPlayers(req.Label, req.TeamName, req.Competition, players)

	default:
		roster := make([]florbal.RosterPlayer, 0, len(req.Players))
		for _, p := range req.Players {
			number, name := strings.TrimSpace(p.Number), strings.TrimSpace(p.Name)
			if number == "" || name == "" {
				respondError(w, http.StatusBadRequest, "Invalid player", tracking.ErrInvalidPlayer)
				return
			}
			roster = append(roster, florbal.RosterPlayer{Number: number, Name: name})
		}
		session = tracking.NewSession(req.Label, req.TeamName, req.Competition, roster)
	}

	session.MatchDate = req.MatchDate
	respondJSON(w, http.StatusCreated, h.sessions.Add(session))
}

// ListSessions handles GET /api/v1/live
func (h *LiveHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sessions.List())
}

// GetSession handles GET /api/v1/live/{id}
func (h *LiveHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		respondTrackingError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// TapStat handles POST /api/v1/live/{id}/stat
func (h *LiveHandler) TapStat(w http.ResponseWriter, r *http.Request) {
	var req statRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(s *tracking.Session) error {
		return s.Tap(req.PlayerID, req.Stat)
	})
}

// TapScore handles POST /api/v1/live/{id}/score
func (h *LiveHandler) TapScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(s *tracking.Session) error {
		return s.Score(req.Side)
	})
}

// Reset handles POST /api/v1/live/{id}/reset with target "stats" or "score"
func (h *LiveHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	switch req.Target {
	case "stats":
		h.update(w, r, func(s *tracking.Session) error { s.ResetStats(); return nil })
	case "score":
		h.update(w, r, func(s *tracking.Session) error { s.ResetScore(); return nil })
	default:
		respondError(w, http.StatusBadRequest, `Reset target must be "stats" or "score"`, nil)
	}
}

// AddPlayer handles POST /api/v1/live/{id}/players
func (h *LiveHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var req manualPlayer
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(s *tracking.Session) error {
		_, err := s.AddPlayer(req.Number, req.Name)
		return err
	})
}

// RemovePlayer handles DELETE /api/v1/live/{id}/players/{playerID}
func (h *LiveHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerID"]
	h.update(w, r, func(s *tracking.Session) error {
		return s.RemovePlayer(playerID)
	})
}

// AssignLine handles PUT /api/v1/live/{id}/players/{playerID}/line
func (h *LiveHandler) AssignLine(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	playerID := mux.Vars(r)["playerID"]
	h.update(w, r, func(s *tracking.Session) error {
		return s.AssignLine(playerID, req.LineID)
	})
}

// FinishSession handles POST /api/v1/live/{id}/finish and archives the match
func (h *LiveHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	match, err := h.sessions.Finish(mux.Vars(r)["id"], func(m store.CompletedMatch) error {
		return h.history.Save(r.Context(), &m)
	})
	if errors.Is(err, tracking.ErrSessionNotFound) {
		respondTrackingError(w, err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save match", err)
		return
	}
	respondJSON(w, http.StatusOK, match)
}

func (h *LiveHandler) update(w http.ResponseWriter, r *http.Request, fn func(*tracking.Session) error) {
	session, err := h.sessions.Update(mux.Vars(r)["id"], fn)
	if err != nil {
		respondTrackingError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func respondTrackingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracking.ErrSessionNotFound), errors.Is(err, tracking.ErrPlayerNotFound):
		respondError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, tracking.ErrUnknownStat),
		errors.Is(err, tracking.ErrUnknownSide),
		errors.Is(err, tracking.ErrInvalidPlayer),
		errors.Is(err, tracking.ErrLineNotFound):
		respondError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
