package models

import "time"

// WeekTemplate is the generated period layout of a school week for a term.
type WeekTemplate struct {
	ID                    string        `db:"id" json:"id"`
	TermID                string        `db:"term_id" json:"term_id"`
	Name                  string        `db:"name" json:"name"`
	StartTime             string        `db:"start_time" json:"start_time"`
	PeriodCount           int           `db:"period_count" json:"period_count"`
	PeriodDurationMinutes int           `db:"period_duration_minutes" json:"period_duration_minutes"`
	DaysPerWeek           int           `db:"days_per_week" json:"days_per_week"`
	GradeIDs              []string      `db:"-" json:"grade_ids"`
	DayTemplates          []DayTemplate `db:"-" json:"day_templates"`
	CreatedAt             time.Time     `db:"created_at" json:"created_at"`
}

// DayTemplate lists the periods of one day in a week template.
type DayTemplate struct {
	DayOfWeek int        `json:"day_of_week"`
	TimeSlots []TimeSlot `json:"time_slots"`
}

// SlotForPeriod returns the time slot of the given day and period.
func (w WeekTemplate) SlotForPeriod(day, period int) (TimeSlot, bool) {
	for _, dt := range w.DayTemplates {
		if dt.DayOfWeek != day {
			continue
		}
		for _, slot := range dt.TimeSlots {
			if slot.Period == period {
				return slot, true
			}
		}
	}
	return TimeSlot{}, false
}
