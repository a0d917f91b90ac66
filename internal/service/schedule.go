package service

import (
	"sort"
	"time"

	"github.com/fortuna/florbal-stats/internal/ingest/florbal"
)

// SortMatchList orders fixtures for picking the next match: upcoming matches
// (dated today or later) soonest first, then past matches latest first, then
// undated ones in page order. The input slice is not modified.
func SortMatchList(items []florbal.MatchListItem, now time.Time) []florbal.MatchListItem {
	today := now.Format(florbal.ISODateLayout)

	var upcoming, past, undated []florbal.MatchListItem
	for _, item := range items {
		switch {
		case item.DateISO == "":
			undated = append(undated, item)
		case item.DateISO >= today:
			upcoming = append(upcoming, item)
		default:
			past = append(past, item)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DateISO < upcoming[j].DateISO
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].DateISO > past[j].DateISO
	})

	sorted := make([]florbal.MatchListItem, 0, len(items))
	sorted = append(sorted, upcoming...)
	sorted = append(sorted, past...)
	return append(sorted, undated...)
}

// IsPast reports whether a fixture is dated before today.
func IsPast(item florbal.MatchListItem, now time.Time) bool {
	return item.DateISO != "" && item.DateISO < now.Format(florbal.ISODateLayout)
}
