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

type schoolOnboarding interface {
	CreateTerm(ctx context.Context, req dto.CreateTermRequest) (*models.Term, error)
	ConfigureLevels(ctx context.Context, req dto.ConfigureLevelsRequest) (*service.RegistrySnapshot, error)
}

// SchoolHandler exposes the onboarding steps that precede timetabling.
type SchoolHandler struct {
	onboarding schoolOnboarding
}

// NewSchoolHandler constructs the handler.
func NewSchoolHandler(onboarding *service.OnboardingService) *SchoolHandler {
	return &SchoolHandler{onboarding: onboarding}
}

// CreateTerm godoc
// @Summary Register an academic term
// @Tags School
// @Accept json
// @Produce json
// @Param payload body dto.CreateTermRequest true "Term"
// @Success 201 {object} response.Envelope
// @Router /api/v1/school/terms [post]
func (h *SchoolHandler) CreateTerm(c *gin.Context) {
	var req dto.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid term payload"))
		return
	}
	term, err := h.onboarding.CreateTerm(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, term)
}

// ConfigureLevels godoc
// @Summary Configure curriculum levels with their grades, streams and subjects
// @Tags School
// @Accept json
// @Produce json
// @Param payload body dto.ConfigureLevelsRequest true "Levels"
// @Success 200 {object} response.Envelope
// @Router /api/v1/school/levels [post]
func (h *SchoolHandler) ConfigureLevels(c *gin.Context) {
	var req dto.ConfigureLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid levels payload"))
		return
	}
	snapshot, err := h.onboarding.ConfigureLevels(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil, map[string]interface{}{"registry_refreshed": snapshot != nil})
}
