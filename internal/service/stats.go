package service

import (
	"regexp"
	"strings"

	"github.com/fortuna/florbal-stats/internal/store"
)

// teamKeySeparator joins team name and competition in a team filter key.
const teamKeySeparator = "|||"

var captainSuffix = regexp.MustCompile(`\s+C$`)

// NormalizePlayerName strips the captain marker so a player's matches merge.
func NormalizePlayerName(name string) string {
	return strings.TrimSpace(captainSuffix.ReplaceAllString(name, ""))
}

// AggregatePlayers sums player stats across matches, keyed by normalised name, in
// order of first appearance. Identity fields come from the first appearance.
func AggregatePlayers(matches []*store.CompletedMatch) []store.PlayerStats {
	index := make(map[string]int)
	totals := []store.PlayerStats{}

	for _, match := range matches {
		for _, p := range match.Players {
			key := NormalizePlayerName(p.Name)
			if i, ok := index[key]; ok {
				t := &totals[i]
				t.Shots += p.Shots
				t.Goals += p.Goals
				t.Assists += p.Assists
				t.Plus += p.Plus
				t.Minus += p.Minus
				t.PlusMinus += p.PlusMinus
				continue
			}
			p.Name = key
			index[key] = len(totals)
			totals = append(totals, p)
		}
	}
	return totals
}

// TeamKey identifies the team a match was tracked for; empty when unknown.
func TeamKey(m *store.CompletedMatch) string {
	if m.TeamName == "" {
		return ""
	}
	if m.Competition == "" {
		return m.TeamName
	}
	return m.TeamName + teamKeySeparator + m.Competition
}

// TeamKeys lists the distinct team keys of matches in list order.
func TeamKeys(matches []*store.CompletedMatch) []string {
	seen := make(map[string]bool)
	keys := []string{}
	for _, m := range matches {
		key := TeamKey(m)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// FilterByTeam keeps the matches tracked for teamName and, when given, competition.
// An empty teamName keeps everything.
func FilterByTeam(matches []*store.CompletedMatch, teamName, competition string) []*store.CompletedMatch {
	if teamName == "" {
		return matches
	}
	want := TeamKey(&store.CompletedMatch{TeamName: teamName, Competition: competition})

	filtered := []*store.CompletedMatch{}
	for _, m := range matches {
		if TeamKey(m) == want {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
