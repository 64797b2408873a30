package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Event is a catered event. GuestCount and the bar timing fields are the two
// live parameters every derived quantity hangs off.
type Event struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string     `gorm:"column:name;not null"`
	Venue      *string    `gorm:"column:venue"`
	HeldOn     *time.Time `gorm:"column:held_on"`
	GuestCount int        `gorm:"column:guest_count;not null;default:0"`
	BarStart   *string    `gorm:"column:bar_start"`
	BarEnd     *string    `gorm:"column:bar_end"`
	BarHours   *int       `gorm:"column:bar_hours"`
	Notes      *string    `gorm:"column:notes"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BarDurationHours resolves the effective bar-service duration. Explicit hours
// win; otherwise the start/end pair is used, wrapping past midnight, rounded
// to the nearest hour with a floor of 1.
func (e Event) BarDurationHours() int {
	if e.BarHours != nil && *e.BarHours >= 1 {
		return *e.BarHours
	}
	if e.BarStart == nil || e.BarEnd == nil {
		return 1
	}
	start, okStart := parseClock(*e.BarStart)
	end, okEnd := parseClock(*e.BarEnd)
	if !okStart || !okEnd {
		return 1
	}
	minutes := end - start
	if minutes <= 0 {
		minutes += 24 * 60
	}
	hours := int(math.Round(float64(minutes) / 60.0))
	if hours < 1 {
		return 1
	}
	return hours
}

func parseClock(value string) (int, bool) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, false
	}
	return parsed.Hour()*60 + parsed.Minute(), true
}
