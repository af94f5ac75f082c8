package catch

import "time"

type timerID int

type timer struct {
	id     timerID
	due    time.Time
	period time.Duration // zero for one-shot
	fn     func(at time.Time)
}

// timerSet is a virtual timer queue driven by advance. Timers fire in due
// order, ties broken by registration order, and each callback receives its
// own due time rather than the wall clock so a late advance replays the
// ticks it missed deterministically.
type timerSet struct {
	nextID timerID
	active []*timer
}

func (ts *timerSet) add(due time.Time, period time.Duration, fn func(time.Time)) timerID {
	ts.nextID++
	ts.active = append(ts.active, &timer{id: ts.nextID, due: due, period: period, fn: fn})
	return ts.nextID
}

func (ts *timerSet) after(now time.Time, d time.Duration, fn func(time.Time)) timerID {
	return ts.add(now.Add(d), 0, fn)
}

func (ts *timerSet) every(now time.Time, period time.Duration, fn func(time.Time)) timerID {
	if period <= 0 {
		panic("catch: non-positive timer period")
	}
	return ts.add(now.Add(period), period, fn)
}

func (ts *timerSet) cancel(id timerID) {
	for i, t := range ts.active {
		if t.id == id {
			ts.active = append(ts.active[:i], ts.active[i+1:]...)
			return
		}
	}
}

func (ts *timerSet) cancelAll() {
	ts.active = ts.active[:0]
}

func (ts *timerSet) len() int { return len(ts.active) }

func (ts *timerSet) earliest() *timer {
	var best *timer
	for _, t := range ts.active {
		if best == nil || t.due.Before(best.due) || (t.due.Equal(best.due) && t.id < best.id) {
			best = t
		}
	}
	return best
}

// advance fires every timer due at or before now. Callbacks may add or
// cancel timers, including themselves.
func (ts *timerSet) advance(now time.Time) {
	for {
		t := ts.earliest()
		if t == nil || t.due.After(now) {
			return
		}
		at := t.due
		if t.period > 0 {
			t.due = t.due.Add(t.period)
		} else {
			ts.cancel(t.id)
		}
		t.fn(at)
	}
}
