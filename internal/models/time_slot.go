package models

// TimeSlot is one period of the school day for a term.
type TimeSlot struct {
	ID              string `db:"id" json:"id"`
	TermID          string `db:"term_id" json:"term_id"`
	Period          int    `db:"period" json:"period"`
	StartTime       string `db:"start_time" json:"start_time"`
	DurationMinutes int    `db:"duration_minutes" json:"duration_minutes"`
}
