package dto

// BulkLessonItem is one candidate of a single-day bulk submission.
type BulkLessonItem struct {
	TimeSlotID string  `json:"time_slot_id" validate:"required,entity_id"`
	SubjectID  string  `json:"subject_id" validate:"required,entity_id"`
	TeacherID  string  `json:"teacher_id" validate:"required,entity_id"`
	StreamID   *string `json:"stream_id" validate:"omitempty,entity_id"`
	RoomNumber *string `json:"room_number" validate:"omitempty,max=32"`
}

// BulkLessonRequest creates many lessons for one grade and day. Items are validated
// individually so a malformed item fails alone.
type BulkLessonRequest struct {
	TermID    string           `json:"term_id" validate:"required,entity_id"`
	GradeID   string           `json:"grade_id" validate:"required,entity_id"`
	DayOfWeek int              `json:"day_of_week" validate:"required,min=1,max=5"`
	Entries   []BulkLessonItem `json:"entries" validate:"required,min=1"`
}

// WeekLessonItem places a lesson by period number inside a generated week template.
type WeekLessonItem struct {
	GradeID    string  `json:"grade_id" validate:"required,entity_id"`
	DayOfWeek  int     `json:"day_of_week" validate:"required,min=1,max=5"`
	Period     int     `json:"period" validate:"required,min=1"`
	SubjectID  string  `json:"subject_id" validate:"required,entity_id"`
	TeacherID  string  `json:"teacher_id" validate:"required,entity_id"`
	StreamID   *string `json:"stream_id" validate:"omitempty,entity_id"`
	RoomNumber *string `json:"room_number" validate:"omitempty,max=32"`
}

// WeekTemplateRequest generates the periods of a school week and optionally fills them.
type WeekTemplateRequest struct {
	TermID                string           `json:"term_id" validate:"required,entity_id"`
	Name                  string           `json:"name" validate:"required,max=120"`
	StartTime             string           `json:"start_time" validate:"required,clock"`
	PeriodCount           int              `json:"period_count" validate:"required,min=1,max=16"`
	PeriodDurationMinutes int              `json:"period_duration_minutes" validate:"required,min=10,max=180"`
	DaysPerWeek           int              `json:"days_per_week" validate:"required,min=1,max=5"`
	GradeIDs              []string         `json:"grade_ids" validate:"required,min=1,dive,required,entity_id"`
	Lessons               []WeekLessonItem `json:"lessons"`
}
