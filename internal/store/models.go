package store

import (
	"errors"
	"time"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
)

// RoleGoalkeeper marks players listed with position G.
const RoleGoalkeeper = "goalkeeper"

// PlayerStats is one player's tally for a tracked match
type PlayerStats struct {
	ID        string           `json:"id"`
	Number    string           `json:"number"`
	Name      string           `json:"name"`
	Position  florbal.Position `json:"position,omitempty"`
	Role      string           `json:"role,omitempty"`
	LineID    string           `json:"lineId,omitempty"`
	Shots     int              `json:"shots"`
	Goals     int              `json:"goals"`
	Assists   int              `json:"assists"`
	Plus      int              `json:"plus"`
	Minus     int              `json:"minus"`
	PlusMinus int              `json:"plusMinus"`
}

// ResetCounters zeroes every counter and keeps the identity fields.
func (p *PlayerStats) ResetCounters() {
	p.Shots, p.Goals, p.Assists = 0, 0, 0
	p.Plus, p.Minus, p.PlusMinus = 0, 0, 0
}

// CompletedMatch is a finished, saved match
type CompletedMatch struct {
	ID            string        `json:"id"`
	Date          time.Time     `json:"date"`
	Label         string        `json:"label"`
	TeamName      string        `json:"teamName,omitempty"`
	Competition   string        `json:"competition,omitempty"`
	OurScore      int           `json:"ourScore"`
	OpponentScore int           `json:"opponentScore"`
	Players       []PlayerStats `json:"players"`
}

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = errors.New("not found")
