package tracking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
	"github.com/fortuna/florbal-stats/internal/store"
)

// Stat is a per-player counter that can be tapped during a match.
type Stat string

const (
	StatShots   Stat = "shots"
	StatGoals   Stat = "goals"
	StatAssists Stat = "assists"
	StatPlus    Stat = "plus"
	StatMinus   Stat = "minus"
)

// Side picks which score a tap increments.
type Side string

const (
	SideOurs   Side = "ours"
	SideTheirs Side = "theirs"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrLineNotFound    = errors.New("line not found")
	ErrUnknownStat     = errors.New("unknown stat")
	ErrUnknownSide     = errors.New("unknown score side")
	ErrInvalidPlayer   = errors.New("player number and name are required")
)

// Line is a formation players can be assigned to.
type Line struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultLines are the formations every session starts with.
var DefaultLines = []Line{
	{ID: "line-1", Name: "Formace 1"},
	{ID: "line-2", Name: "Formace 2"},
	{ID: "line-3", Name: "Formace 3"},
}

// Session is the live state of one tracked match. It is not safe for concurrent
// use; the Registry serialises access.
type Session struct {
	ID            string              `json:"id"`
	Label         string              `json:"label"`
	TeamName      string              `json:"teamName,omitempty"`
	Competition   string              `json:"competition,omitempty"`
	MatchDate     string              `json:"matchDate,omitempty"`
	StartedAt     time.Time           `json:"startedAt"`
	OurScore      int                 `json:"ourScore"`
	OpponentScore int                 `json:"opponentScore"`
	Players       []store.PlayerStats `json:"players"`
	Lines         []Line              `json:"lines"`
}

// NewSession starts a session for the given roster.
func NewSession(label, teamName, competition string, roster []florbal.RosterPlayer) *Session {
	lines := make([]Line, len(DefaultLines))
	copy(lines, DefaultLines)

	return &Session{
		ID:          uuid.NewString(),
		Label:       label,
		TeamName:    teamName,
		Competition: competition,
		StartedAt:   time.Now(),
		Players:     RosterToPlayers(roster),
		Lines:       lines,
	}
}

// NewSessionWithPlayers starts a session for players carried over from an earlier
// match. They get fresh ids and zeroed counters.
func NewSessionWithPlayers(label, teamName, competition string, players []store.PlayerStats) *Session {
	s := NewSession(label, teamName, competition, nil)
	for _, p := range players {
		p.ID = uuid.NewString()
		p.ResetCounters()
		s.Players = append(s.Players, p)
	}
	return s
}

// RosterToPlayers creates zeroed stat lines for roster players. Goalkeepers get
// the goalkeeper role.
func RosterToPlayers(roster []florbal.RosterPlayer) []store.PlayerStats {
	players := make([]store.PlayerStats, 0, len(roster))
	for _, p := range roster {
		player := store.PlayerStats{
			ID:       uuid.NewString(),
			Number:   p.Number,
			Name:     p.Name,
			Position: p.Position,
		}
		if p.Position == florbal.PositionGoalkeeper {
			player.Role = store.RoleGoalkeeper
		}
		players = append(players, player)
	}
	return players
}

// MatchLabel names a match after the opponent when known, else after the match id.
func MatchLabel(teamName, opponentName, matchID string) string {
	switch {
	case opponentName != "":
		return teamName + " vs " + opponentName
	case matchID != "":
		return "Zápas #" + matchID
	default:
		return ""
	}
}

// Tap increments stat for a player. Plus and minus keep PlusMinus in sync.
func (s *Session) Tap(playerID string, stat Stat) error {
	p := s.player(playerID)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}

	switch stat {
	case StatShots:
		p.Shots++
	case StatGoals:
		p.Goals++
	case StatAssists:
		p.Assists++
	case StatPlus:
		p.Plus++
		p.PlusMinus = p.Plus - p.Minus
	case StatMinus:
		p.Minus++
		p.PlusMinus = p.Plus - p.Minus
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	return nil
}

// Score adds a goal to one side of the scoreboard.
func (s *Session) Score(side Side) error {
	switch side {
	case SideOurs:
		s.OurScore++
	case SideTheirs:
		s.OpponentScore++
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
	return nil
}

// ResetStats zeroes every player's counters.
func (s *Session) ResetStats() {
	for i := range s.Players {
		s.Players[i].ResetCounters()
	}
}

// ResetScore zeroes the scoreboard.
func (s *Session) ResetScore() {
	s.OurScore, s.OpponentScore = 0, 0
}

// AddPlayer appends a manually entered player.
func (s *Session) AddPlayer(number, name string) (store.PlayerStats, error) {
	number, name = strings.TrimSpace(number), strings.TrimSpace(name)
	if number == "" || name == "" {
		return store.PlayerStats{}, ErrInvalidPlayer
	}

	player := store.PlayerStats{ID: uuid.NewString(), Number: number, Name: name}
	s.Players = append(s.Players, player)
	return player, nil
}

// RemovePlayer drops a player from the session.
func (s *Session) RemovePlayer(playerID string) error {
	for i := range s.Players {
		if s.Players[i].ID == playerID {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
}

// AssignLine puts a player into a formation; an empty lineID clears it.
func (s *Session) AssignLine(playerID, lineID string) error {
	p := s.player(playerID)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if lineID != "" && !s.hasLine(lineID) {
		return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}
	p.LineID = lineID
	return nil
}

// Finish turns the session into a completed match dated now. An unlabelled match
// is labelled with the date.
func (s *Session) Finish(now time.Time) store.CompletedMatch {
	label := s.Label
	if label == "" {
		label = fmt.Sprintf("%d. %d. %d", now.Day(), int(now.Month()), now.Year())
	}

	players := make([]store.PlayerStats, len(s.Players))
	copy(players, s.Players)

	return store.CompletedMatch{
		ID:            s.ID,
		Date:          now,
		Label:         label,
		TeamName:      s.TeamName,
		Competition:   s.Competition,
		OurScore:      s.OurScore,
		OpponentScore: s.OpponentScore,
		Players:       players,
	}
}

// clone returns a deep copy safe to hand out of the registry.
func (s *Session) clone() *Session {
	c := *s
	c.Players = make([]store.PlayerStats, len(s.Players))
	copy(c.Players, s.Players)
	c.Lines = make([]Line, len(s.Lines))
	copy(c.Lines, s.Lines)
	return &c
}

func (s *Session) player(id string) *store.PlayerStats {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

func (s *Session) hasLine(id string) bool {
	for _, l := range s.Lines {
		if l.ID == id {
			return true
		}
	}
	return false
}
