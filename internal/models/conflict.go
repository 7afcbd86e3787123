package models

// ConflictReason identifies which scheduling invariant a candidate entry violates.
type ConflictReason string

const (
	ConflictTeacherBusy ConflictReason = "TEACHER_BUSY"
	ConflictGradeBusy   ConflictReason = "GRADE_BUSY"
)

// LessonConflict describes the existing entry that blocks a candidate.
type LessonConflict struct {
	Reason      ConflictReason `json:"reason"`
	EntryID     string         `json:"entry_id"`
	TermID      string         `json:"term_id"`
	DayOfWeek   int            `json:"day_of_week"`
	TimeSlotID  string         `json:"time_slot_id"`
	GradeID     string         `json:"grade_id"`
	GradeName   string         `json:"grade_name,omitempty"`
	TeacherID   string         `json:"teacher_id"`
	TeacherName string         `json:"teacher_name,omitempty"`
}

// LessonConflictError is returned when a lesson collides with an existing one.
type LessonConflictError struct {
	Reason   ConflictReason `json:"reason"`
	Message  string         `json:"message"`
	Conflict LessonConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *LessonConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
