package florbal

import (
	"regexp"
)

const (
	homeAnchor = "#tab-domaci"
	awayAnchor = "#tab-hoste"

	DefaultHomeName = "Domácí"
	DefaultAwayName = "Hosté"
)

var (
	birthYearPattern = regexp.MustCompile(`^\d{4}$`)
	positionPattern  = regexp.MustCompile(`^[UOG]$`)
)

// teamNameSource is one step of the team name fallback chain.
type teamNameSource func(doc, team Node) string

// teamNameChain is tried in order; the first non-empty name wins.
var teamNameChain = []teamNameSource{
	headingTeamName,
	triggerTeamName,
}

// headingTeamName reads the first heading or table caption inside the team block.
func headingTeamName(_, team Node) string {
	return firstText(team, "h2, h3, h4, caption")
}

// triggerTeamName reads the tab/accordion control that toggles the team block.
// The first control found decides, even when its label is blank.
func triggerTeamName(doc, team Node) string {
	id := team.ID()
	if id == "" {
		return ""
	}
	for _, attr := range []string{"href", "data-bs-target", "data-target"} {
		if trigger := doc.First(`[` + attr + `="#` + id + `"]`); trigger != nil {
			return trigger.Text()
		}
	}
	return ""
}

// ExtractRoster reads both team rosters from a match roster page.
func ExtractRoster(doc Node, matchID string) (MatchRoster, error) {
	homeBlock := doc.First(homeAnchor)
	awayBlock := doc.First(awayAnchor)

	if homeBlock == nil && awayBlock == nil {
		return MatchRoster{}, ErrRostersNotFound
	}

	roster := MatchRoster{
		MatchID: matchID,
		Home:    extractTeam(doc, homeBlock, DefaultHomeName),
		Away:    extractTeam(doc, awayBlock, DefaultAwayName),
	}

	if roster.PlayerCount() == 0 {
		return MatchRoster{}, ErrEmptyRoster
	}

	return roster, nil
}

func extractTeam(doc, team Node, fallbackName string) TeamRoster {
	roster := TeamRoster{TeamName: fallbackName, Players: []RosterPlayer{}}
	if team == nil {
		return roster
	}

	for _, source := range teamNameChain {
		if name := source(doc, team); name != "" {
			roster.TeamName = name
			break
		}
	}

	for _, row := range team.Find("table tbody tr") {
		if player, ok := parsePlayerRow(row.Find("td")); ok {
			roster.Players = append(roster.Players, player)
		}
	}

	return roster
}

// parsePlayerRow returns false for rows that carry no player name.
func parsePlayerRow(cells []Node) (RosterPlayer, bool) {
	if len(cells) < 2 {
		return RosterPlayer{}, false
	}

	name := ""
	for _, cell := range cells {
		link := cell.First("a")
		if link == nil {
			continue
		}
		name = link.Text()
		if name == "" {
			name = cell.Text()
		}
		break
	}
	if name == "" {
		return RosterPlayer{}, false
	}

	player := RosterPlayer{
		Number: cells[0].Text(),
		Name:   name,
	}

	// Scan from the right: the birth year column sits after the jersey number.
	for i := len(cells) - 1; i >= 0; i-- {
		if text := cells[i].Text(); birthYearPattern.MatchString(text) {
			player.BirthYear = text
			break
		}
	}

	for _, cell := range cells {
		if text := cell.Text(); positionPattern.MatchString(text) {
			player.Position = Position(text)
			break
		}
	}

	return player, true
}
