package booking

import "time"

// DefaultSlotDuration is used when a day schedule does not set its own.
const DefaultSlotDuration = 60

// BreakWindow is a pause inside an open day during which no slots are offered.
type BreakWindow struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// DaySchedule describes a doctor's hours for one weekday. The zero value is a
// closed day, so a doctor without configured timings yields no slots.
type DaySchedule struct {
	IsOpen       bool         `json:"is_open"`
	Start        TimeOfDay    `json:"start"`
	End          TimeOfDay    `json:"end"`
	SlotDuration int          `json:"slot_duration"`
	Break        *BreakWindow `json:"break,omitempty"`
}

// EffectiveSlotDuration returns the configured slot duration, falling back to
// the default when unset.
func (d DaySchedule) EffectiveSlotDuration() int {
	if d.SlotDuration > 0 {
		return d.SlotDuration
	}
	return DefaultSlotDuration
}

// Contains reports whether t falls inside the open hours [Start, End).
func (d DaySchedule) Contains(t TimeOfDay) bool {
	return d.IsOpen && t >= d.Start && t < d.End
}

// WeeklySchedule is a doctor's recurring weekly template, one entry per
// weekday. An explicit struct rather than a day-name map so that every
// weekday is accounted for at compile time.
type WeeklySchedule struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// Day returns the schedule for the given weekday.
func (w WeeklySchedule) Day(d time.Weekday) DaySchedule {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

// overlaps implements half-open interval overlap: two intervals share an
// instant when aStart < bEnd AND aEnd > bStart.
func overlaps(aStart TimeOfDay, aDur int, bStart TimeOfDay, bDur int) bool {
	return aStart < bStart.Add(bDur) && aStart.Add(aDur) > bStart
}
