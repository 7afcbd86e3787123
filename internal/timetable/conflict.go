// Package timetable holds the in-memory timetable grid and the pure scheduling rules
// (conflict detection and teacher qualification) shared by the single-entry editor
// and the bulk coordinator.
package timetable

import "github.com/noah-isme/sma-timetable-api/internal/models"

// Candidate is a prospective lesson placement.
type Candidate struct {
	TermID     string
	DayOfWeek  int
	TimeSlotID string
	GradeID    string
	StreamID   string
	TeacherID  string
}

// CandidateFromEntry builds a candidate from an entry.
func CandidateFromEntry(e models.LessonEntry) Candidate {
	return Candidate{
		TermID:     e.TermID,
		DayOfWeek:  e.DayOfWeek,
		TimeSlotID: e.TimeSlotID,
		GradeID:    e.GradeID,
		StreamID:   e.Stream(),
		TeacherID:  e.TeacherID,
	}
}

// Result is the conflict checker verdict. Conflicting is set when OK is false.
type Result struct {
	OK          bool
	Reason      models.ConflictReason
	Conflicting *models.LessonEntry
}

// CheckConflict scans existing entries for one sharing the candidate's term, day and
// slot that either uses the same teacher or occupies the same grade. The entry whose
// id equals ignoreID is skipped so an update does not collide with itself.
func CheckConflict(candidate Candidate, existing []models.LessonEntry, ignoreID string) Result {
	for i := range existing {
		item := existing[i]
		if ignoreID != "" && item.ID == ignoreID {
			continue
		}
		if item.TermID != candidate.TermID || item.DayOfWeek != candidate.DayOfWeek || item.TimeSlotID != candidate.TimeSlotID {
			continue
		}
		if candidate.TeacherID != "" && item.TeacherID == candidate.TeacherID {
			return Result{Reason: models.ConflictTeacherBusy, Conflicting: &item}
		}
		if item.GradeID == candidate.GradeID && streamsOverlap(item.Stream(), candidate.StreamID) {
			return Result{Reason: models.ConflictGradeBusy, Conflicting: &item}
		}
	}
	return Result{OK: true}
}

// BusyTeachers returns the teachers already committed in the given term/day/slot.
func BusyTeachers(termID string, day int, timeSlotID string, existing []models.LessonEntry) map[string]struct{} {
	busy := make(map[string]struct{})
	for _, item := range existing {
		if item.TermID == termID && item.DayOfWeek == day && item.TimeSlotID == timeSlotID {
			busy[item.TeacherID] = struct{}{}
		}
	}
	return busy
}

// AvailableTeachers is the complement of the busy set within the qualified teachers.
func AvailableTeachers(grade models.Grade, teachers []models.Teacher, busy map[string]struct{}) []models.Teacher {
	qualified := QualifiedTeachers(grade, teachers)
	available := make([]models.Teacher, 0, len(qualified))
	for _, t := range qualified {
		if _, taken := busy[t.ID]; taken {
			continue
		}
		available = append(available, t)
	}
	return available
}

// An entry without a stream occupies the whole grade.
func streamsOverlap(a, b string) bool {
	return a == "" || b == "" || a == b
}
