package florbal

import (
	"regexp"
	"strconv"
	"time"
)

// ISODateLayout is the format of MatchListItem.DateISO.
const ISODateLayout = "2006-01-02"

// seasonWindow bounds how far from now an inferred date may fall.
const seasonWindow = 9 * 30 * 24 * time.Hour

var shortDatePattern = regexp.MustCompile(`(\d{1,2})\.\s*(\d{1,2})\.`)

// datetimeLayouts are accepted in a <time datetime="…"> attribute.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	ISODateLayout,
}

// hasShortDate reports whether text contains a "d. m." token.
func hasShortDate(text string) bool {
	return shortDatePattern.MatchString(text)
}

// InferShortDate resolves a Czech "d. m." date without a year against now.
//
// The candidates are the same day and month in the previous, current and next year;
// only those within nine months of now are kept and the nearest one wins. It returns
// false when the text has no usable token or no candidate falls inside the window.
func InferShortDate(text string, now time.Time) (time.Time, bool) {
	m := shortDatePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}

	var (
		best     time.Time
		bestDist time.Duration
		found    bool
	)
	for offset := -1; offset <= 1; offset++ {
		candidate := time.Date(now.Year()+offset, time.Month(month), day, 0, 0, 0, 0, now.Location())
		dist := absDuration(candidate.Sub(now))
		if dist > seasonWindow {
			continue
		}
		if !found || dist < bestDist {
			best, bestDist, found = candidate, dist, true
		}
	}

	return best, found
}

// parseDatetimeAttr parses a machine-readable date from a <time> element.
func parseDatetimeAttr(value string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
