package queue

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptimalSubmitTimeProperties(t *testing.T) {
	starts := []time.Time{
		time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC),   // Monday before the window
		time.Date(2026, 3, 9, 9, 30, 0, 0, time.UTC),  // Monday inside the window
		time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC),  // Monday after the window
		time.Date(2026, 3, 13, 16, 0, 0, 0, time.UTC), // Friday evening
		time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), // Saturday
		time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC),  // Sunday
	}

	rng := rand.New(rand.NewSource(42))
	for _, now := range starts {
		for i := 0; i < 200; i++ {
			slot := optimalSubmitTime(now, rng)

			assert.True(t, slot.After(now), "slot %v must be strictly after %v", slot, now)
			assert.NotEqual(t, time.Saturday, slot.Weekday(), "from %v", now)
			assert.NotEqual(t, time.Sunday, slot.Weekday(), "from %v", now)

			// Base window [09:00, 11:00) plus at most 30 minutes of jitter.
			minutes := slot.Hour()*60 + slot.Minute()
			assert.GreaterOrEqual(t, minutes, 9*60+5, "from %v", now)
			assert.Less(t, minutes, 11*60+30, "from %v", now)
		}
	}
}

func TestOptimalSubmitTimeRollsPastWeekend(t *testing.T) {
	// Friday 11:30 UTC is past the window, so the next slot is Monday.
	friday := time.Date(2026, 3, 13, 11, 30, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		slot := optimalSubmitTime(friday, rng)
		assert.Equal(t, time.Monday, slot.Weekday())
		assert.Equal(t, 16, slot.Day())
	}
}

func TestOptimalSubmitTimeIgnoresLocationForNow(t *testing.T) {
	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	slot := OptimalSubmitTime(now, "Berlin", "Germany")
	assert.True(t, slot.After(now))
	assert.Equal(t, time.UTC, slot.Location())
}
