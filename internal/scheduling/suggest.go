// Package scheduling finds meeting times that suit a group, based on the
// availability intervals its members declared.
package scheduling

import (
	"sort"
	"time"

	"github.com/mmynk/syncplan/internal/models"
)

const (
	// SearchDays is how many days, starting today, are scanned.
	SearchDays = 14
	// FirstStartHour and LastStartHour bound the hour-aligned candidate starts.
	FirstStartHour = 9
	LastStartHour  = 16
	// DefaultDurationMinutes is used when callers have no preference.
	DefaultDurationMinutes = 60
	// MaxSuggestions caps the returned list.
	MaxSuggestions = 10
)

// A slot is kept when at least minScoreNum/minScoreDen of the required
// participants are free (80%). Compared in integers to avoid float edges.
const (
	minScoreNum = 8
	minScoreDen = 10
)

// GenerateSuggestions scans SearchDays days from today, each with start
// times FirstStartHour:00 through LastStartHour:00, and returns slots where
// at least 80% of required participants have an available interval covering
// [start, start+duration). Results are ordered by descending score; ties keep
// scan order (earlier first). At most MaxSuggestions are returned.
//
// An empty participant list yields no suggestions. durationMinutes must be
// positive.
func GenerateSuggestions(today models.Date, required []string, durationMinutes int, intervals []models.AvailabilityInterval) []models.MeetingSuggestion {
	suggestions := []models.MeetingSuggestion{}
	if len(required) == 0 {
		return suggestions
	}

	for day := 0; day < SearchDays; day++ {
		date := today.AddDays(day)
		free := availableByUser(date, required, intervals)

		for hour := FirstStartHour; hour <= LastStartHour; hour++ {
			start := models.NewTimeOfDay(hour, 0)
			end := start.Add(durationMinutes)

			var available []string
			for _, userID := range required {
				if coversWindow(free[userID], start, end) {
					available = append(available, userID)
				}
			}

			if len(available)*minScoreDen < len(required)*minScoreNum {
				continue
			}
			suggestions = append(suggestions, models.MeetingSuggestion{
				Start:            date.At(start),
				DurationMinutes:  durationMinutes,
				AvailableUserIDs: available,
				Score:            float64(len(available)) / float64(len(required)),
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions
}

// availableByUser groups the available intervals on date by required user.
func availableByUser(date models.Date, required []string, intervals []models.AvailabilityInterval) map[string][]models.AvailabilityInterval {
	wanted := make(map[string]bool, len(required))
	for _, id := range required {
		wanted[id] = true
	}

	free := make(map[string][]models.AvailabilityInterval, len(required))
	for _, iv := range intervals {
		if !iv.Available || !wanted[iv.UserID] || !iv.Date.Equal(date) {
			continue
		}
		free[iv.UserID] = append(free[iv.UserID], iv)
	}
	return free
}

func coversWindow(intervals []models.AvailabilityInterval, start, end models.TimeOfDay) bool {
	for _, iv := range intervals {
		if iv.Contains(start, end) {
			return true
		}
	}
	return false
}

// IsAvailableAt reports whether userID declared an available interval that
// includes the instant at. Both interval ends are inclusive.
func IsAvailableAt(userID string, at time.Time, intervals []models.AvailabilityInterval) bool {
	date := models.NewDateFromTime(at)
	t := models.TimeOfDayOf(at)
	for _, iv := range intervals {
		if iv.UserID != userID || !iv.Available || !iv.Date.Equal(date) {
			continue
		}
		if t >= iv.Start && t <= iv.End {
			return true
		}
	}
	return false
}

// WeekDates returns Monday through Sunday of the week containing base.
func WeekDates(base models.Date) []models.Date {
	offset := (int(base.Weekday()) + 6) % 7 // Monday = 0
	monday := base.AddDays(-offset)
	dates := make([]models.Date, 7)
	for i := range dates {
		dates[i] = monday.AddDays(i)
	}
	return dates
}
