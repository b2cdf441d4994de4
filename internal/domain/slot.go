package domain

import (
	"fmt"
	"regexp"
	"time"
)

// SlotCount is the number of bookable one-hour slots per day.
// The grid runs 05:00 to midnight and is the same for every date and turf.
const SlotCount = 19

const slotGridStartHour = 5

var slotLabelPattern = regexp.MustCompile(`^([01]\d|2[0-3]):00$`)

// SlotGrid returns the ordered slot start labels for a day:
// "05:00", "06:00", ... "23:00".
func SlotGrid() []string {
	slots := make([]string, 0, SlotCount)
	for hour := slotGridStartHour; hour <= 23; hour++ {
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
	}
	return slots
}

// IsValidSlot reports whether label is a slot on the daily grid.
func IsValidSlot(label string) bool {
	if !slotLabelPattern.MatchString(label) {
		return false
	}
	var hour int
	fmt.Sscanf(label, "%d:00", &hour)
	return hour >= slotGridStartHour
}

// ValidateSlots checks that every label is on the grid and none repeats.
func ValidateSlots(labels []string) error {
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if !IsValidSlot(label) {
			return fmt.Errorf("%w: %q", ErrInvalidSlot, label)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("%w: %q selected twice", ErrInvalidSlot, label)
		}
		seen[label] = struct{}{}
	}
	return nil
}

// ValidateDate checks the calendar date format used throughout the API.
// Dates carry no time zone, matching how slots are keyed.
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}
