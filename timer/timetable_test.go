package timer

import (
	"testing"
	"time"
)

func TestEntryMatchesWildcards(t *testing.T) {
	e := Entry{Month: ALL, MDay: ALL, Hour: 7, Min: 30, WDay: ALL, ActionID: 5}
	ts := time.Date(2026, time.March, 15, 7, 30, 0, 0, time.UTC)
	if !e.Matches(ts) {
		t.Fatalf("expected match")
	}
	ts2 := time.Date(2026, time.March, 15, 7, 31, 0, 0, time.UTC)
	if e.Matches(ts2) {
		t.Fatalf("expected no match for different minute")
	}
}

func TestMatcherTickFiresOnlyAtMinuteBoundary(t *testing.T) {
	var fired []int
	m := &Matcher{
		Entries: []Entry{{Month: ALL, MDay: ALL, Hour: ALL, Min: ALL, WDay: ALL, ActionID: 9}},
	}
	m.Fire = func(id int) { fired = append(fired, id) }

	at := time.Date(2026, time.March, 15, 7, 30, 5, 0, time.UTC)
	m.Now = func() time.Time { return at }
	m.Tick()
	if len(fired) != 0 {
		t.Fatalf("expected no fire off the minute boundary, got %v", fired)
	}

	at = time.Date(2026, time.March, 15, 7, 30, 0, 0, time.UTC)
	m.Tick()
	if len(fired) != 1 || fired[0] != 9 {
		t.Fatalf("expected single fire of action 9, got %v", fired)
	}
}
