package model

import (
	"fmt"
	"slices"
	"time"
)

// RecurrenceType selects how a recurring item regenerates its due date.
type RecurrenceType string

// Recurrence type constants.
const (
	RecurDaily    RecurrenceType = "daily"
	RecurWeekly   RecurrenceType = "weekly"
	RecurMonthly  RecurrenceType = "monthly"
	RecurWeekdays RecurrenceType = "weekdays"
)

// Valid reports whether r is a known recurrence type.
func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurDaily, RecurWeekly, RecurMonthly, RecurWeekdays:
		return true
	}
	return false
}

// Recurrence is the single repeat rule attached to an item.
// Weekdays (0=Sunday .. 6=Saturday) only matter for weekly rules and
// DayOfMonth only for monthly ones.
type Recurrence struct {
	Type       RecurrenceType `json:"type"`
	Weekdays   []int          `json:"weekdays,omitempty"`
	DayOfMonth int            `json:"day_of_month,omitempty"`
	NextDue    *time.Time     `json:"next_due,omitempty"`
}

// Validate checks the rule's type and ranges.
func (r Recurrence) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("unknown recurrence type %q", r.Type)
	}
	for _, d := range r.Weekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("weekday %d out of range 0-6", d)
		}
	}
	if r.DayOfMonth != 0 && (r.DayOfMonth < 1 || r.DayOfMonth > 31) {
		return fmt.Errorf("day of month %d out of range 1-31", r.DayOfMonth)
	}
	return nil
}

// NormalizedWeekdays returns the weekday set sorted and without duplicates.
func (r Recurrence) NormalizedWeekdays() []int {
	if len(r.Weekdays) == 0 {
		return nil
	}
	days := slices.Clone(r.Weekdays)
	slices.Sort(days)
	return slices.Compact(days)
}
