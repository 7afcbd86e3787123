package models

import (
	"strings"
	"time"
)

// Weekday numbering used by the timetable: 1=Monday .. 5=Friday.
const (
	Monday    = 1
	Tuesday   = 2
	Wednesday = 3
	Thursday  = 4
	Friday    = 5
)

// PendingIDPrefix marks locally generated ids of entries not yet committed.
const PendingIDPrefix = "pending-"

var weekdayNames = map[int]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
}

// WeekdayName returns the English name for a timetable day, or "" when out of range.
func WeekdayName(day int) string {
	return weekdayNames[day]
}

// LessonEntry assigns a subject and teacher to a (grade, day, period) cell.
// Term, grade, stream, day and time slot form the entry identity.
type LessonEntry struct {
	ID         string    `db:"id" json:"id"`
	TermID     string    `db:"term_id" json:"term_id"`
	GradeID    string    `db:"grade_id" json:"grade_id"`
	StreamID   *string   `db:"stream_id" json:"stream_id,omitempty"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	TimeSlotID string    `db:"time_slot_id" json:"time_slot_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	RoomNumber *string   `db:"room_number" json:"room_number,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Pending reports whether the entry still carries a local placeholder id.
func (e LessonEntry) Pending() bool {
	return e.ID == "" || strings.HasPrefix(e.ID, PendingIDPrefix)
}

// Stream returns the stream id or "" for whole-grade entries.
func (e LessonEntry) Stream() string {
	if e.StreamID == nil {
		return ""
	}
	return *e.StreamID
}

// LessonEntryFilter narrows timetable listings.
type LessonEntryFilter struct {
	TermID     string
	GradeID    string
	TeacherID  string
	DayOfWeek  int
	TimeSlotID string
}
