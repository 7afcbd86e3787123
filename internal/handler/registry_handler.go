package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type registryReader interface {
	Grades(ctx context.Context) ([]models.GradeSummary, error)
	StreamsForGrade(ctx context.Context, gradeID string) ([]models.Stream, error)
	QualifiedTeachers(ctx context.Context, gradeID string) ([]models.Teacher, error)
	SubjectsForLevel(ctx context.Context, levelID string) ([]models.Subject, error)
	Refresh(ctx context.Context) (service.RegistrySnapshot, error)
}

// RegistryHandler serves the school configuration used by the timetable editor.
type RegistryHandler struct {
	registry registryReader
}

// NewRegistryHandler constructs the handler.
func NewRegistryHandler(registry *service.RegistryService) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

// Grades godoc
// @Summary List grades ordered for pickers
// @Tags Registry
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/registry/grades [get]
func (h *RegistryHandler) Grades(c *gin.Context) {
	grades, err := h.registry.Grades(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Streams godoc
// @Summary List streams of a grade
// @Tags Registry
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/registry/grades/{id}/streams [get]
func (h *RegistryHandler) Streams(c *gin.Context) {
	streams, err := h.registry.StreamsForGrade(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, streams, nil)
}

// Teachers godoc
// @Summary List teachers qualified for a grade
// @Tags Registry
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/registry/grades/{id}/teachers [get]
func (h *RegistryHandler) Teachers(c *gin.Context) {
	teachers, err := h.registry.QualifiedTeachers(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// Subjects godoc
// @Summary List subjects offered at a level
// @Tags Registry
// @Produce json
// @Param id path string true "Level ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/registry/levels/{id}/subjects [get]
func (h *RegistryHandler) Subjects(c *gin.Context) {
	subjects, err := h.registry.SubjectsForLevel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Refresh godoc
// @Summary Reload the school configuration from the persistence backend
// @Tags Registry
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/registry/refresh [post]
func (h *RegistryHandler) Refresh(c *gin.Context) {
	snapshot, err := h.registry.Refresh(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil, map[string]interface{}{
		"grades":    len(snapshot.Grades),
		"teachers":  len(snapshot.Teachers),
		"loaded_at": snapshot.LoadedAt,
	})
}
