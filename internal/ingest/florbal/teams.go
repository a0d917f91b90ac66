package florbal

import "regexp"

const (
	teamLinkSelector = `a[href*="/team/detail/overview/"]`

	competitionColumn = 1
	cityColumn        = 5
)

var teamIDPattern = regexp.MustCompile(`/team/detail/overview/(\d+)`)

// ExtractTeamSearch reads team directory search hits in page order.
func ExtractTeamSearch(doc Node) ([]TeamSearchResult, error) {
	results := []TeamSearchResult{}

	for _, link := range doc.Find(teamLinkSelector) {
		href, _ := link.Attr("href")
		m := teamIDPattern.FindStringSubmatch(href)
		if m == nil {
			continue
		}

		name := link.Text()
		if name == "" {
			continue
		}

		result := TeamSearchResult{TeamID: m[1], TeamName: name}
		if row := link.Closest("tr"); row != nil {
			cells := row.Find("td")
			result.Competition = cellText(cells, competitionColumn)
			result.City = cellText(cells, cityColumn)
		}
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, ErrNoTeams
	}
	return results, nil
}

func cellText(cells []Node, i int) string {
	if i >= len(cells) {
		return ""
	}
	return cells[i].Text()
}
