package florbal

// Position is the single-letter role code printed in federation rosters.
type Position string

const (
	PositionForward    Position = "U"
	PositionDefense    Position = "O"
	PositionGoalkeeper Position = "G"
)

// RosterPlayer is one player row of a match roster.
type RosterPlayer struct {
	Number    string   `json:"number"`
	Name      string   `json:"name"`
	BirthYear string   `json:"birthYear,omitempty"`
	Position  Position `json:"position,omitempty"`
}

// TeamRoster holds the players of one side in source table order.
type TeamRoster struct {
	TeamName string         `json:"teamName"`
	Players  []RosterPlayer `json:"players"`
}

// MatchRoster is the parsed roster page of a single match.
type MatchRoster struct {
	MatchID string     `json:"matchId"`
	Home    TeamRoster `json:"home"`
	Away    TeamRoster `json:"away"`
}

// PlayerCount returns the number of players across both sides.
func (r MatchRoster) PlayerCount() int {
	return len(r.Home.Players) + len(r.Away.Players)
}

// MatchListItem is one fixture from a team's match list.
//
// Date is the text shown on the page; DateISO is the derived YYYY-MM-DD date and is
// empty when no date token could be read.
type MatchListItem struct {
	MatchID  string `json:"matchId"`
	HomeTeam string `json:"homeTeam,omitempty"`
	AwayTeam string `json:"awayTeam,omitempty"`
	Date     string `json:"date,omitempty"`
	DateISO  string `json:"dateIso,omitempty"`
}

// TeamSearchResult is one row of the team directory search.
type TeamSearchResult struct {
	TeamID      string `json:"teamId"`
	TeamName    string `json:"teamName"`
	Competition string `json:"competition,omitempty"`
	City        string `json:"city,omitempty"`
}
