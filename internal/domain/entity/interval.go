package entity

import "time"

// BusyInterval is a half-open interval [Start, End) during which a doctor is occupied
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Conflicts reports whether [start, end) overlaps any of the busy intervals
func Conflicts(start, end time.Time, busy []BusyInterval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// BusyIntervals collects the intervals blocked by active appointments
func BusyIntervals(appointments []Appointment) []BusyInterval {
	busy := make([]BusyInterval, 0, len(appointments))
	for i := range appointments {
		if !appointments[i].IsActive() {
			continue
		}
		busy = append(busy, appointments[i].Busy())
	}
	return busy
}
