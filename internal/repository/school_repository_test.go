package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestSchoolRepositoryCreateTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO terms").
		WithArgs(sqlmock.AnyArg(), "Term 1", "2026", start, end, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	term, err := repo.CreateTerm(context.Background(), dto.CreateTermRequest{Name: "Term 1", AcademicYear: "2026", StartDate: start, EndDate: end, IsActive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, term.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryConfigureLevels(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	idRow := func(id string) *sqlmock.Rows { return sqlmock.NewRows([]string{"id"}).AddRow(id) }

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO levels").
		WithArgs(sqlmock.AnyArg(), "Upper Primary", "cbc", 1).
		WillReturnRows(idRow("up"))
	mock.ExpectQuery("INSERT INTO grades").
		WithArgs(sqlmock.AnyArg(), "Grade 7", "up", 1).
		WillReturnRows(idRow("g7"))
	mock.ExpectQuery("INSERT INTO streams").
		WithArgs(sqlmock.AnyArg(), "East", "g7", 1).
		WillReturnRows(idRow("s7e"))
	mock.ExpectQuery("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "Science", "up", 1, nil).
		WillReturnRows(idRow("sci"))
	mock.ExpectCommit()

	err := repo.ConfigureLevels(context.Background(), dto.ConfigureLevelsRequest{
		CurriculumID: "cbc",
		Levels: []dto.LevelConfig{{
			Name:     "Upper Primary",
			Grades:   []dto.GradeConfig{{Name: "Grade 7", Streams: []string{" East "}}},
			Subjects: []dto.SubjectConfig{{Name: "Science"}},
		}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepositoryConfigureLevelsRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSchoolRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO levels").
		WillReturnError(&pq.Error{Code: "23514", Message: "levels_name_check"})
	mock.ExpectRollback()

	err := repo.ConfigureLevels(context.Background(), dto.ConfigureLevelsRequest{
		CurriculumID: "cbc",
		Levels:       []dto.LevelConfig{{Name: "Upper Primary", Grades: []dto.GradeConfig{{Name: "Grade 7"}}}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekTemplateRepositoryCreateFillsSlotIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeekTemplateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO week_templates").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO week_template_grades").
		WithArgs(sqlmock.AnyArg(), "g7").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("INSERT INTO time_slots").
		WithArgs(sqlmock.AnyArg(), "term-1", 1, "08:00", 40).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("slot-1"))
	mock.ExpectQuery("INSERT INTO time_slots").
		WithArgs(sqlmock.AnyArg(), "term-1", 2, "08:40", 40).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("slot-2"))
	mock.ExpectCommit()

	slots := []models.TimeSlot{
		{Period: 1, StartTime: "08:00", DurationMinutes: 40},
		{Period: 2, StartTime: "08:40", DurationMinutes: 40},
	}
	template := models.WeekTemplate{
		TermID:   "term-1",
		Name:     "Standard week",
		GradeIDs: []string{"g7"},
		DayTemplates: []models.DayTemplate{
			{DayOfWeek: 1, TimeSlots: append([]models.TimeSlot(nil), slots...)},
			{DayOfWeek: 2, TimeSlots: append([]models.TimeSlot(nil), slots...)},
		},
	}

	created, err := repo.CreateWeekTemplate(context.Background(), template)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	slot, ok := created.SlotForPeriod(2, 2)
	require.True(t, ok)
	assert.Equal(t, "slot-2", slot.ID)
	assert.Equal(t, "term-1", slot.TermID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
