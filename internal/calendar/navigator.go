package calendar

import "time"

// Step inputs accepted by Navigator.Step.
const (
	StepPrev    = -1
	StepCurrent = 0
	StepNext    = 1
)

// Navigator tracks the selected month for a report view. It never moves past
// the real-world current month.
type Navigator struct {
	now    func() time.Time
	cursor time.Time
}

// NewNavigator starts at the current month. A nil clock uses time.Now.
func NewNavigator(now func() time.Time) *Navigator {
	if now == nil {
		now = time.Now
	}
	n := &Navigator{now: now}
	n.cursor = n.currentFirst()
	return n
}

// Cursor returns the selected month.
func (n *Navigator) Cursor() Month {
	return MonthOf(n.cursor)
}

// Current returns the real-world current month.
func (n *Navigator) Current() Month {
	return MonthOf(n.currentFirst())
}

// CanNext reports whether stepping forward is allowed.
func (n *Navigator) CanNext() bool {
	return n.cursor.Before(n.currentFirst())
}

// Step moves the cursor: 0 jumps to the current month, +1 and -1 move one
// month. It reports whether the cursor was accepted; a target after the
// current month or an unknown step leaves the cursor unchanged.
func (n *Navigator) Step(step int) bool {
	var next time.Time
	switch step {
	case StepCurrent:
		next = n.currentFirst()
	case StepNext:
		next = firstOfMonth(n.withDay(28).AddDate(0, 0, 4))
	case StepPrev:
		next = firstOfMonth(n.withDay(1).AddDate(0, 0, -1))
	default:
		return false
	}
	return n.set(next)
}

// Goto selects month m under the same guard as Step.
func (n *Navigator) Goto(m Month) bool {
	return n.set(m.First())
}

func (n *Navigator) set(next time.Time) bool {
	if next.After(n.currentFirst()) {
		return false
	}
	n.cursor = next
	return true
}

func (n *Navigator) withDay(day int) time.Time {
	return time.Date(n.cursor.Year(), n.cursor.Month(), day, 0, 0, 0, 0, n.cursor.Location())
}

func (n *Navigator) currentFirst() time.Time {
	return firstOfMonth(n.now())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}
