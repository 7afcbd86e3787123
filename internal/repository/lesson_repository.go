package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const lessonColumns = "id, term_id, grade_id, stream_id, subject_id, teacher_id, time_slot_id, day_of_week, room_number, created_at, updated_at"

// LessonRepository persists timetable entries.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListLessons returns entries matching the filter ordered by day and slot.
func (r *LessonRepository) ListLessons(ctx context.Context, filter models.LessonEntryFilter) ([]models.LessonEntry, error) {
	var conditions []string
	var args []interface{}

	if filter.TermID != "" {
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)+1))
		args = append(args, filter.TermID)
	}
	if filter.GradeID != "" {
		conditions = append(conditions, fmt.Sprintf("grade_id = $%d", len(args)+1))
		args = append(args, filter.GradeID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DayOfWeek != 0 {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}
	if filter.TimeSlotID != "" {
		conditions = append(conditions, fmt.Sprintf("time_slot_id = $%d", len(args)+1))
		args = append(args, filter.TimeSlotID)
	}

	query := "SELECT " + lessonColumns + " FROM lesson_entries WHERE 1=1"
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY day_of_week ASC, time_slot_id ASC, id ASC"

	var entries []models.LessonEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list lesson entries: %w", err)
	}
	return entries, nil
}

// FindLesson loads an entry by id. It returns sql.ErrNoRows when absent.
func (r *LessonRepository) FindLesson(ctx context.Context, id string) (*models.LessonEntry, error) {
	query := "SELECT " + lessonColumns + " FROM lesson_entries WHERE id = $1"
	var entry models.LessonEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateLesson inserts an entry, replacing a pending placeholder id with a real one.
func (r *LessonRepository) CreateLesson(ctx context.Context, entry models.LessonEntry) (*models.LessonEntry, error) {
	if entry.Pending() {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `INSERT INTO lesson_entries (id, term_id, grade_id, stream_id, subject_id, teacher_id, time_slot_id, day_of_week, room_number, created_at, updated_at) VALUES (:id, :term_id, :grade_id, :stream_id, :subject_id, :teacher_id, :time_slot_id, :day_of_week, :room_number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return nil, translate(err, "create lesson entry")
	}
	return &entry, nil
}

// UpdateLesson stores the mutable attributes of an entry.
func (r *LessonRepository) UpdateLesson(ctx context.Context, entry models.LessonEntry) (*models.LessonEntry, error) {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lesson_entries SET subject_id = :subject_id, teacher_id = :teacher_id, room_number = :room_number, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return nil, translate(err, "update lesson entry")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, sql.ErrNoRows
	}
	return &entry, nil
}

// DeleteLesson removes an entry. It returns sql.ErrNoRows when nothing was deleted.
func (r *LessonRepository) DeleteLesson(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lesson_entries WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete lesson entry")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
