package entity

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day, use HH:MM or HH:MM:SS")

// DoctorAvailability is a recurring weekly window during which a doctor accepts appointments.
// DayOfWeek uses 0 = Monday ... 6 = Sunday.
type DoctorAvailability struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID    uint      `gorm:"not null;index:idx_availability_doctor_day,priority:1" json:"doctor_id"`
	DayOfWeek   int       `gorm:"not null;index:idx_availability_doctor_day,priority:2" json:"day_of_week"`
	StartTime   string    `gorm:"type:varchar(8);not null" json:"start_time"`
	EndTime     string    `gorm:"type:varchar(8);not null" json:"end_time"`
	IsAvailable bool      `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (DoctorAvailability) TableName() string {
	return "doctor_availability"
}

// Window converts the row into a date-independent time window
func (a *DoctorAvailability) Window() (TimeWindow, error) {
	start, err := ParseTimeOfDay(a.StartTime)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := ParseTimeOfDay(a.EndTime)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("end_time: %w", err)
	}
	if end <= start {
		return TimeWindow{}, fmt.Errorf("end_time %s must be after start_time %s", a.EndTime, a.StartTime)
	}
	return TimeWindow{Start: start, End: end}, nil
}

// TimeWindow is a time-of-day interval, expressed as offsets from midnight
type TimeWindow struct {
	Start time.Duration
	End   time.Duration
}

// On anchors the window to the given calendar date in UTC
func (w TimeWindow) On(date time.Time) (time.Time, time.Time) {
	midnight := StartOfDayUTC(date)
	return midnight.Add(w.Start), midnight.Add(w.End)
}

// Contains reports whether [start, end) falls entirely inside the window anchored on start's date
func (w TimeWindow) Contains(start, end time.Time) bool {
	windowStart, windowEnd := w.On(start)
	return !start.Before(windowStart) && !end.After(windowEnd)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into an offset from midnight.
// "24:00" is accepted as the end of the day.
func ParseTimeOfDay(s string) (time.Duration, error) {
	if s == "24:00" || s == "24:00:00" {
		return 24 * time.Hour, nil
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, ErrInvalidTimeOfDay
}

// StartOfDayUTC returns midnight UTC of the date t falls on in UTC
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day index of t in UTC with 0 = Monday
func Weekday(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}
