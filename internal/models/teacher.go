package models

import "github.com/lib/pq"

// Teacher is an instructor together with the grades they may teach.
// GradeLevels holds grade display names (legacy data); GradeIDs holds grade ids.
type Teacher struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	GradeLevels pq.StringArray `db:"grade_levels" json:"grade_levels"`
	GradeIDs    pq.StringArray `db:"grade_ids" json:"grade_ids"`
}
