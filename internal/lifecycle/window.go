package lifecycle

import "time"

// Pickup rules.
const (
	MaxWithdrawalsPerDay = 5
	PickupOpensHour      = 8
	PickupClosesHour     = 18
)

// Window evaluates pickup rules in a fixed time zone.
type Window struct {
	loc *time.Location
}

// NewWindow returns a Window for loc; nil means time.Local.
func NewWindow(loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	return Window{loc: loc}
}

// Day returns the half-open calendar day [from, to) containing at.
func (w Window) Day(at time.Time) (from, to time.Time) {
	local := at.In(w.loc)
	from = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.loc)
	return from, from.AddDate(0, 0, 1)
}

// Bounds returns the opening and closing instants of the pickup window on at's day.
func (w Window) Bounds(at time.Time) (opens, closes time.Time) {
	local := at.In(w.loc)
	y, m, d := local.Date()
	opens = time.Date(y, m, d, PickupOpensHour, 0, 0, 0, w.loc)
	closes = time.Date(y, m, d, PickupClosesHour, 0, 0, 0, w.loc)
	return opens, closes
}

// Contains reports whether at falls within the pickup window, both ends inclusive.
func (w Window) Contains(at time.Time) bool {
	opens, closes := w.Bounds(at)
	return !at.Before(opens) && !at.After(closes)
}
