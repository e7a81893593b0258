package timer

import "time"

// ALL is the wildcard value for any timetable field (spec.md §3).
const ALL = -1

// Entry is one timetable row: (month, mday, hour, min, wday, action id),
// where any field may be ALL.
type Entry struct {
	Month, MDay, Hour, Min, WDay int
	ActionID                     int
}

func fieldMatch(field, want int) bool { return field == ALL || field == want }

// Matches reports whether Entry e matches wall-clock time t.
func (e Entry) Matches(t time.Time) bool {
	return fieldMatch(e.Month, int(t.Month())) &&
		fieldMatch(e.MDay, t.Day()) &&
		fieldMatch(e.Hour, t.Hour()) &&
		fieldMatch(e.Min, t.Minute()) &&
		fieldMatch(e.WDay, int(t.Weekday()))
}

// Matcher iterates a timetable list against wall-clock time, ticking at
// 1 Hz while the seconds-to-next-minute is non-zero and at 60 Hz once
// aligned to the minute boundary (spec.md §4.8 kind 3).
type Matcher struct {
	Entries []Entry
	Fire    func(actionID int)
	Now     func() time.Time // overridable for tests

	lastMinute time.Time // minute already dispatched by Tick
}

// NextInterval returns the matcher's next poll interval given the
// current time, per the 1 Hz / 60 Hz alignment rule.
func (m *Matcher) NextInterval(t time.Time) time.Duration {
	if t.Second() != 0 {
		return time.Second
	}
	return time.Second / 60
}

// Tick should be called on each poll per NextInterval; it dispatches
// every matching timetable entry exactly once for the current minute.
func (m *Matcher) Tick() {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	t := now()
	if t.Second() != 0 {
		return
	}
	minute := t.Truncate(time.Minute)
	if minute.Equal(m.lastMinute) {
		return
	}
	m.lastMinute = minute
	for _, e := range m.Entries {
		if e.Matches(t) && m.Fire != nil {
			m.Fire(e.ActionID)
		}
	}
}
