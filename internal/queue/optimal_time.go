package queue

import (
	"math/rand"
	"time"
)

// OptimalSubmitTime picks the next business-morning slot for a submission:
// a uniformly random point in [09:00, 11:00) UTC on the next weekday, plus
// 5-30 minutes of jitter so a population of scheduled items never fires in
// a detectable burst. Past 11:00 UTC the window rolls to the next day.
//
// city and country are accepted for future timezone-aware windows but are
// not used yet; scheduling is UTC only.
func OptimalSubmitTime(now time.Time, city, country string) time.Time {
	_, _ = city, country
	return optimalSubmitTime(now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func optimalSubmitTime(now time.Time, rng *rand.Rand) time.Time {
	day := now.UTC()
	if day.Hour() >= 11 {
		day = day.AddDate(0, 0, 1)
	}
	for {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		hour := 9 + rng.Intn(2)
		minute := rng.Intn(60)
		slot := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
		slot = slot.Add(time.Duration(5+rng.Intn(26)) * time.Minute)
		if slot.After(now) {
			return slot
		}
		// Today's morning window is already behind us.
		day = day.AddDate(0, 0, 1)
	}
}
