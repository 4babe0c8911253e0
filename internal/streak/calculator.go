// Package streak computes consecutive-day activity streak transitions.
// Dates are compared as YYYY-MM-DD calendar-day strings; the caller
// supplies "today", so the package holds no clock state.
package streak

import "time"

// DateLayout is the calendar-day format used throughout the profile.
const DateLayout = "2006-01-02"

// Update is the result of advancing a streak for one day of activity.
type Update struct {
	Current    int    `json:"current"`
	Longest    int    `json:"longest"`
	LastActive string `json:"lastActive"`
	Extended   bool   `json:"extended"` // streak grew by one
	Reset      bool   `json:"reset"`    // chain broken, restarted at 1
}

// Advance applies one day of activity to a streak. Same-day activity is a
// no-op, an exactly-one-day gap extends the streak, any larger gap (or a
// missing/unparseable last-active date) starts a new chain at 1. The
// longest streak never decreases.
func Advance(current, longest int, lastActive, today string) Update {
	u := Update{Current: current, Longest: longest, LastActive: today}

	gap, ok := dayGap(lastActive, today)
	switch {
	case ok && gap == 0:
		u.LastActive = lastActive
		return u
	case ok && gap == 1:
		u.Current = current + 1
		u.Extended = true
	default:
		u.Current = 1
		u.Reset = lastActive != "" && current > 1
	}

	if u.Current > u.Longest {
		u.Longest = u.Current
	}
	return u
}

// dayGap returns the number of calendar days between two day strings.
func dayGap(from, to string) (int, bool) {
	if from == "" {
		return 0, false
	}
	a, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0, false
	}
	b, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0, false
	}
	return int(b.Sub(a).Hours() / 24), true
}

// Today formats a time as a calendar-day string.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}
