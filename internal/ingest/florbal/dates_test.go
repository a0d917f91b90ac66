package florbal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInferShortDate(t *testing.T) {
	prague, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		prague = time.UTC
	}
	now := time.Date(2024, time.November, 15, 10, 30, 0, 0, prague)

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"next spring resolves forward", "5. 3.", "2025-03-05", true},
		{"upcoming december stays in year", "20. 12.", "2024-12-20", true},
		{"leading zeros and no spaces", "SO, 07.09. 1. kolo", "2024-09-07", true},
		{"embedded in display text", "NE, 27. 9. 1. kolo", "2024-09-27", true},
		{"late summer resolves backward", "15. 8.", "2024-08-15", true},
		{"day out of range", "32. 1.", "", false},
		{"month out of range", "1. 13.", "", false},
		{"no token", "odloženo", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InferShortDate(tt.text, now)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.Format(ISODateLayout))
			}
		})
	}
}

func TestInferShortDate_SeasonCrossesNewYear(t *testing.T) {
	now := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

	got, ok := InferShortDate("14. 9.", now)
	assert.True(t, ok)
	assert.Equal(t, "2024-09-14", got.Format(ISODateLayout))

	got, ok = InferShortDate("22. 2.", now)
	assert.True(t, ok)
	assert.Equal(t, "2025-02-22", got.Format(ISODateLayout))
}

func TestParseDatetimeAttr(t *testing.T) {
	tests := []struct {
		value  string
		want   string
		wantOK bool
	}{
		{"2024-10-05T18:00:00+02:00", "2024-10-05", true},
		{"2024-10-05T18:00", "2024-10-05", true},
		{"2024-10-05", "2024-10-05", true},
		{"sobota", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := parseDatetimeAttr(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got.Format(ISODateLayout))
			}
		})
	}
}
