package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// CreateLessonRequest places a single lesson in the grid.
type CreateLessonRequest struct {
	TermID     string  `json:"term_id" validate:"required,entity_id"`
	GradeID    string  `json:"grade_id" validate:"required,entity_id"`
	StreamID   *string `json:"stream_id" validate:"omitempty,entity_id"`
	SubjectID  string  `json:"subject_id" validate:"required,entity_id"`
	TeacherID  string  `json:"teacher_id" validate:"required,entity_id"`
	TimeSlotID string  `json:"time_slot_id" validate:"required,entity_id"`
	DayOfWeek  int     `json:"day_of_week" validate:"required,min=1,max=5"`
	RoomNumber *string `json:"room_number" validate:"omitempty,max=32"`
}

// UpdateLessonRequest changes the mutable attributes of a lesson. Nil fields are kept;
// an empty room number clears the room.
type UpdateLessonRequest struct {
	SubjectID  *string `json:"subject_id" validate:"omitempty,entity_id"`
	TeacherID  *string `json:"teacher_id" validate:"omitempty,entity_id"`
	RoomNumber *string `json:"room_number" validate:"omitempty,max=32"`
}

// AvailableTeachersQuery selects the slot whose free teachers are listed.
type AvailableTeachersQuery struct {
	TermID     string `form:"termId" validate:"required,entity_id"`
	GradeID    string `form:"gradeId" validate:"required,entity_id"`
	DayOfWeek  int    `form:"dayOfWeek" validate:"required,min=1,max=5"`
	TimeSlotID string `form:"timeSlotId" validate:"required,entity_id"`
}

// TimetableGrid is the weekly view of one grade for a term.
type TimetableGrid struct {
	TermID    string            `json:"term_id"`
	GradeID   string            `json:"grade_id"`
	GradeName string            `json:"grade_name"`
	TimeSlots []models.TimeSlot `json:"time_slots"`
	Days      []TimetableDay    `json:"days"`
	Entries   int               `json:"entries"`
}

// TimetableDay lists the periods of one weekday.
type TimetableDay struct {
	DayOfWeek int               `json:"day_of_week"`
	Name      string            `json:"name"`
	Periods   []TimetablePeriod `json:"periods"`
}

// TimetablePeriod holds the lessons of one cell, empty when the cell is free.
type TimetablePeriod struct {
	TimeSlotID string          `json:"time_slot_id"`
	Period     int             `json:"period"`
	StartTime  string          `json:"start_time"`
	Lessons    []LessonDisplay `json:"lessons"`
}

// LessonDisplay decorates an entry with names for rendering.
type LessonDisplay struct {
	models.LessonEntry
	SubjectName  string  `json:"subject_name"`
	SubjectColor *string `json:"subject_color,omitempty"`
	TeacherName  string  `json:"teacher_name"`
	StreamName   string  `json:"stream_name,omitempty"`
}
