package timetable

import (
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// QualifiedTeachers filters teachers able to teach the grade. A teacher qualifies when
// the grade id is in GradeIDs or the grade name is in GradeLevels. A grade without a
// name is not filtered.
func QualifiedTeachers(grade models.Grade, teachers []models.Teacher) []models.Teacher {
	if strings.TrimSpace(grade.Name) == "" {
		out := make([]models.Teacher, len(teachers))
		copy(out, teachers)
		return out
	}
	out := make([]models.Teacher, 0, len(teachers))
	for _, t := range teachers {
		if IsQualified(grade, t) {
			out = append(out, t)
		}
	}
	return out
}

// IsQualified reports whether a single teacher may teach the grade.
func IsQualified(grade models.Grade, teacher models.Teacher) bool {
	if strings.TrimSpace(grade.Name) == "" {
		return true
	}
	for _, id := range teacher.GradeIDs {
		if id == grade.ID {
			return true
		}
	}
	name := normalizeName(grade.Name)
	for _, level := range teacher.GradeLevels {
		if normalizeName(level) == name {
			return true
		}
	}
	return false
}

// HasQualificationData reports whether any teacher references the grade by id or name.
// When none does, qualification is not enforced for that grade.
func HasQualificationData(grade models.Grade, teachers []models.Teacher) bool {
	for _, t := range teachers {
		if IsQualified(grade, t) {
			return true
		}
	}
	return false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
