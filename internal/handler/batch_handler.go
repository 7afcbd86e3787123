package handler

import (
	"context"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type batchRunner interface {
	BulkCreate(ctx context.Context, req dto.BulkLessonRequest) (*models.BatchResult, error)
	SubmitBulk(ctx context.Context, req dto.BulkLessonRequest) (*models.BatchResult, error)
	GenerateWeek(ctx context.Context, req dto.WeekTemplateRequest) (*models.BatchResult, error)
	SubmitWeek(ctx context.Context, req dto.WeekTemplateRequest) (*models.BatchResult, error)
	GetBatch(ctx context.Context, id string) (*models.BatchResult, error)
}

// BatchHandler exposes bulk lesson creation and week template generation.
type BatchHandler struct {
	batches batchRunner
}

// NewBatchHandler constructs the handler.
func NewBatchHandler(batches *service.BulkScheduleService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// Bulk godoc
// @Summary Create many lessons for one grade and day
// @Description Entries are submitted in order; each failure is reported on its own entry. With async=true the batch runs in the background and 202 points at the status resource.
// @Tags Batches
// @Accept json
// @Produce json
// @Param async query bool false "Run in the background"
// @Param payload body dto.BulkLessonRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/v1/timetable/bulk [post]
func (h *BatchHandler) Bulk(c *gin.Context) {
	var req dto.BulkLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}
	async, err := asyncFlag(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if async {
		result, err := h.batches.SubmitBulk(c.Request.Context(), req)
		h.respondAccepted(c, result, err)
		return
	}
	result, err := h.batches.BulkCreate(c.Request.Context(), req)
	respondBatch(c, result, err)
}

// WeekTemplate godoc
// @Summary Generate the periods of a school week and optionally fill them
// @Tags Batches
// @Accept json
// @Produce json
// @Param async query bool false "Run in the background"
// @Param payload body dto.WeekTemplateRequest true "Week template payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/v1/timetable/week-templates [post]
func (h *BatchHandler) WeekTemplate(c *gin.Context) {
	var req dto.WeekTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid week template payload"))
		return
	}
	async, err := asyncFlag(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if async {
		result, err := h.batches.SubmitWeek(c.Request.Context(), req)
		h.respondAccepted(c, result, err)
		return
	}
	result, err := h.batches.GenerateWeek(c.Request.Context(), req)
	respondBatch(c, result, err)
}

// Batch godoc
// @Summary Progress and outcome of a batch
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/timetable/batches/{id} [get]
func (h *BatchHandler) Batch(c *gin.Context) {
	result, err := h.batches.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, batchMeta(result))
}

func (h *BatchHandler) respondAccepted(c *gin.Context, result *models.BatchResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	location := path.Join(path.Dir(c.Request.URL.Path), "batches", result.BatchID)
	response.Accepted(c, result, location)
}

// respondBatch returns the batch outcome. A batch that failed before any entry was
// submitted is reported as an error; per-entry failures stay inside the result.
func respondBatch(c *gin.Context, result *models.BatchResult, err error) {
	if err != nil && (result == nil || result.Processed == 0) {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, batchMeta(result))
}

func batchMeta(result *models.BatchResult) map[string]interface{} {
	if result == nil {
		return nil
	}
	return map[string]interface{}{
		"state":     result.State,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}
}

func asyncFlag(c *gin.Context) (bool, error) {
	raw := c.Query("async")
	if raw == "" {
		return false, nil
	}
	async, err := strconv.ParseBool(raw)
	if err != nil {
		return false, appErrors.Clone(appErrors.ErrValidation, "async must be true or false")
	}
	return async, nil
}
