package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/florbal-stats/internal/store"
)

func TestNormalizePlayerName(t *testing.T) {
	tests := map[string]string{
		"Jan Novák C":   "Jan Novák",
		"Jan Novák   C": "Jan Novák",
		"Jan Novák":     "Jan Novák",
		"Cyril C.":      "Cyril C.",
		"C":             "C",
		" Eva Malá ":    "Eva Malá",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePlayerName(in), in)
	}
}

func TestAggregatePlayers(t *testing.T) {
	matches := []*store.CompletedMatch{
		{Players: []store.PlayerStats{
			{ID: "a1", Number: "7", Name: "Jan Novák C", Goals: 2, Assists: 1, Shots: 4, Plus: 2, PlusMinus: 2},
			{ID: "a2", Number: "1", Name: "Petr Svoboda", Role: store.RoleGoalkeeper},
		}},
		{Players: []store.PlayerStats{
			{ID: "b1", Number: "17", Name: "Jan Novák", Goals: 1, Minus: 2, PlusMinus: -2},
			{ID: "b2", Number: "9", Name: "Eva Malá", Assists: 3},
		}},
	}

	got := AggregatePlayers(matches)

	assert.Equal(t, []store.PlayerStats{
		{ID: "a1", Number: "7", Name: "Jan Novák", Goals: 3, Assists: 1, Shots: 4, Plus: 2, Minus: 2, PlusMinus: 0},
		{ID: "a2", Number: "1", Name: "Petr Svoboda", Role: store.RoleGoalkeeper},
		{ID: "b2", Number: "9", Name: "Eva Malá", Assists: 3},
	}, got)
	assert.Equal(t, "Jan Novák C", matches[0].Players[0].Name, "input untouched")
	assert.Empty(t, AggregatePlayers(nil))
}

func TestTeamKeysAndFilter(t *testing.T) {
	matches := []*store.CompletedMatch{
		{ID: "1", TeamName: "Sokol", Competition: "2. liga"},
		{ID: "2"},
		{ID: "3", TeamName: "Sokol"},
		{ID: "4", TeamName: "Sokol", Competition: "2. liga"},
	}

	assert.Equal(t, []string{"Sokol|||2. liga", "Sokol"}, TeamKeys(matches))

	filtered := FilterByTeam(matches, "Sokol", "2. liga")
	assert.Len(t, filtered, 2)
	assert.Equal(t, "4", filtered[1].ID)

	filtered = FilterByTeam(matches, "Sokol", "")
	assert.Len(t, filtered, 1)
	assert.Equal(t, "3", filtered[0].ID)

	assert.Len(t, FilterByTeam(matches, "", ""), 4)
}
