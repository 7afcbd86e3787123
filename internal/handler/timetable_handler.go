package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type timetableEditor interface {
	ListTimeSlots(ctx context.Context, termID string) ([]models.TimeSlot, error)
	Grid(ctx context.Context, termID, gradeID string) (*dto.TimetableGrid, error)
	Entries(ctx context.Context, termID, gradeID string) ([]models.LessonEntry, error)
	AvailableTeachers(ctx context.Context, query dto.AvailableTeachersQuery) ([]models.Teacher, error)
	Create(ctx context.Context, req dto.CreateLessonRequest) (*models.LessonEntry, error)
	Get(ctx context.Context, id string) (*models.LessonEntry, error)
	Update(ctx context.Context, id string, req dto.UpdateLessonRequest) (*models.LessonEntry, error)
	Delete(ctx context.Context, id string) error
}

type timetableExporter interface {
	Export(ctx context.Context, termID, gradeID, format string) (*service.ExportFile, error)
}

// TimetableHandler exposes the grade timetable and single lesson edits.
type TimetableHandler struct {
	timetable timetableEditor
	exporter  timetableExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(timetable *service.TimetableService, exporter *service.ExportService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable, exporter: exporter}
}

// TimeSlots godoc
// @Summary List the periods of a term
// @Tags Timetable
// @Produce json
// @Param termId path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/terms/{termId}/time-slots [get]
func (h *TimetableHandler) TimeSlots(c *gin.Context) {
	slots, err := h.timetable.ListTimeSlots(c.Request.Context(), c.Param("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Grid godoc
// @Summary Weekly timetable of a grade
// @Tags Timetable
// @Produce json
// @Param termId path string true "Term ID"
// @Param gradeId path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/terms/{termId}/grades/{gradeId}/timetable [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	grid, err := h.timetable.Grid(c.Request.Context(), c.Param("termId"), c.Param("gradeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Export godoc
// @Summary Download the weekly timetable of a grade
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param termId path string true "Term ID"
// @Param gradeId path string true "Grade ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /api/v1/terms/{termId}/grades/{gradeId}/timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	file, err := h.exporter.Export(c.Request.Context(), c.Param("termId"), c.Param("gradeId"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}

// ListEntries godoc
// @Summary List lesson entries of a grade
// @Tags Timetable
// @Produce json
// @Param termId query string true "Term ID"
// @Param gradeId query string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/timetable/entries [get]
func (h *TimetableHandler) ListEntries(c *gin.Context) {
	termID, gradeID := c.Query("termId"), c.Query("gradeId")
	if termID == "" || gradeID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId and gradeId are required"))
		return
	}
	entries, err := h.timetable.Entries(c.Request.Context(), termID, gradeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// AvailableTeachers godoc
// @Summary Teachers qualified for the grade and free in the slot
// @Tags Timetable
// @Produce json
// @Param termId query string true "Term ID"
// @Param gradeId query string true "Grade ID"
// @Param dayOfWeek query int true "Day of week (1=Monday..5=Friday)"
// @Param timeSlotId query string true "Time slot ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/timetable/available-teachers [get]
func (h *TimetableHandler) AvailableTeachers(c *gin.Context) {
	var query dto.AvailableTeachersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	teachers, err := h.timetable.AvailableTeachers(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// CreateEntry godoc
// @Summary Place a lesson in the grid
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.CreateLessonRequest true "Lesson"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /api/v1/timetable/entries [post]
func (h *TimetableHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}
	entry, err := h.timetable.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// GetEntry godoc
// @Summary Get a lesson entry
// @Tags Timetable
// @Produce json
// @Param id path string true "Lesson entry ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/timetable/entries/{id} [get]
func (h *TimetableHandler) GetEntry(c *gin.Context) {
	entry, err := h.timetable.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// UpdateEntry godoc
// @Summary Change subject, teacher or room of a lesson
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Lesson entry ID"
// @Param payload body dto.UpdateLessonRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/v1/timetable/entries/{id} [patch]
func (h *TimetableHandler) UpdateEntry(c *gin.Context) {
	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}
	entry, err := h.timetable.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// DeleteEntry godoc
// @Summary Remove a lesson from the grid
// @Tags Timetable
// @Param id path string true "Lesson entry ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /api/v1/timetable/entries/{id} [delete]
func (h *TimetableHandler) DeleteEntry(c *gin.Context) {
	if err := h.timetable.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
