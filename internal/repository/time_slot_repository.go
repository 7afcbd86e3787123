package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimeSlotRepository reads the periods of a term.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// ListTimeSlots returns the periods of a term ordered by period number.
func (r *TimeSlotRepository) ListTimeSlots(ctx context.Context, termID string) ([]models.TimeSlot, error) {
	const query = `SELECT id, term_id, period, start_time, duration_minutes FROM time_slots WHERE term_id = $1 ORDER BY period ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, termID); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}
