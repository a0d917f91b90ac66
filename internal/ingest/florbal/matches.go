package florbal

import (
	"regexp"
	"time"
	"unicode/utf8"
)

const (
	matchBlockSelector = "div.Match"
	matchLinkSelector  = `a[href*="/match/detail/"]`
	homeSideSelector   = ".Match-leftContent"
	awaySideSelector   = ".Match-rightContent"
)

var matchIDPattern = regexp.MustCompile(`/match/detail/[^/]+/(\d+)`)

// teamNameHooks are class-name styling hooks used for team labels, most specific first.
var teamNameHooks = []string{
	".Match-teamName",
	`[class*="teamName"]`,
	`[class*="TeamName"]`,
	`[class*="team-name"]`,
	`[class*="TeamLabel"]`,
	`[class*="team_name"]`,
}

// sideNameSource is one step of the team label fallback chain for a match side.
type sideNameSource func(side Node) string

var sideNameChain = []sideNameSource{
	hookedSideName,
	shortLeafSideName,
}

func hookedSideName(side Node) string {
	for _, hook := range teamNameHooks {
		if text := firstText(side, hook); utf8.RuneCountInString(text) > 1 {
			return text
		}
	}
	return ""
}

// shortLeafSideName takes the first leaf whose text is label-sized (3 to 60 runes).
func shortLeafSideName(side Node) string {
	for _, el := range side.Find("*") {
		if !el.IsLeaf() {
			continue
		}
		text := el.Text()
		if n := utf8.RuneCountInString(text); n >= 3 && n <= 60 {
			return text
		}
	}
	return ""
}

// dateTextSource is one step of the display date fallback chain.
type dateTextSource func(block Node) string

var dateTextChain = []dateTextSource{
	timeOrClassedDate,
	leafShortDate,
}

// timeOrClassedDate prefers a <time> element; a classed element is only consulted
// when the block has no <time> at all.
func timeOrClassedDate(block Node) string {
	if el := block.First("time"); el != nil {
		return el.Text()
	}
	return firstText(block, ".Match-date, .date")
}

func leafShortDate(block Node) string {
	for _, el := range block.Find("*") {
		if !el.IsLeaf() {
			continue
		}
		if text := el.Text(); hasShortDate(text) {
			return text
		}
	}
	return ""
}

// ExtractMatchList reads the fixtures of a team match list page in source order.
// now anchors the year inference for dates printed without a year.
func ExtractMatchList(doc Node, now time.Time) ([]MatchListItem, error) {
	blocks := doc.Find(matchBlockSelector)
	if len(blocks) == 0 {
		return nil, ErrNoMatches
	}

	items := make([]MatchListItem, 0, len(blocks))
	for _, block := range blocks {
		item, ok := parseMatchBlock(block, now)
		if ok {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		return nil, ErrNoMatchesRead
	}
	return items, nil
}

func parseMatchBlock(block Node, now time.Time) (MatchListItem, bool) {
	link := block.First(matchLinkSelector)
	if link == nil {
		return MatchListItem{}, false
	}
	href, _ := link.Attr("href")
	m := matchIDPattern.FindStringSubmatch(href)
	if m == nil {
		return MatchListItem{}, false
	}

	item := MatchListItem{
		MatchID:  m[1],
		HomeTeam: sideName(block, homeSideSelector),
		AwayTeam: sideName(block, awaySideSelector),
	}

	for _, source := range dateTextChain {
		if text := source(block); text != "" {
			item.Date = text
			break
		}
	}
	item.DateISO = matchDateISO(block, item.Date, now)

	return item, true
}

func sideName(block Node, selector string) string {
	side := block.First(selector)
	if side == nil {
		return ""
	}
	for _, source := range sideNameChain {
		if name := source(side); name != "" {
			return name
		}
	}
	return ""
}

func matchDateISO(block Node, display string, now time.Time) string {
	if el := block.First("time"); el != nil {
		if value, ok := el.Attr("datetime"); ok && value != "" {
			if t, ok := parseDatetimeAttr(value); ok {
				return t.Format(ISODateLayout)
			}
		}
	}
	if t, ok := InferShortDate(display, now); ok {
		return t.Format(ISODateLayout)
	}
	return ""
}
