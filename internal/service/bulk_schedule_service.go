package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/tenant"
)

// Batch kinds reported in results and used as job types.
const (
	BatchKindBulk = "bulk"
	BatchKindWeek = "week_template"
)

type weekTemplateStore interface {
	CreateWeekTemplate(ctx context.Context, template models.WeekTemplate) (*models.WeekTemplate, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// BulkScheduleConfig tunes batch limits and status retention.
type BulkScheduleConfig struct {
	MaxEntries int
	StatusTTL  time.Duration
}

// batchPayload is the queued form of an asynchronous batch.
type batchPayload struct {
	Tenant string
	Bulk   *dto.BulkLessonRequest
	Week   *dto.WeekTemplateRequest
}

type batchItem struct {
	entry models.LessonEntry
	err   error
}

// BulkScheduleService creates many lessons in one batch. Entries are submitted one by
// one in caller order; each is checked against the backend state plus the entries
// accepted earlier in the same batch. Failed entries are reported and never rolled back.
type BulkScheduleService struct {
	timetable *TimetableService
	templates weekTemplateStore
	queue     jobDispatcher
	tracker   *batchTracker
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       BulkScheduleConfig
}

// NewBulkScheduleService constructs the coordinator. The dispatcher is attached with
// SetDispatcher once the queue exists, since the queue handler is HandleJob.
func NewBulkScheduleService(timetable *TimetableService, templates weekTemplateStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg BulkScheduleConfig) *BulkScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 200
	}
	if cfg.StatusTTL <= 0 {
		cfg.StatusTTL = 30 * time.Minute
	}
	return &BulkScheduleService{
		timetable: timetable,
		templates: templates,
		tracker:   newBatchTracker(cfg.StatusTTL),
		validator: registerValidations(validate),
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetDispatcher enables asynchronous batches.
func (s *BulkScheduleService) SetDispatcher(queue jobDispatcher) {
	s.queue = queue
}

// BulkCreate runs a single-day batch for one grade and waits for the outcome.
func (s *BulkScheduleService) BulkCreate(ctx context.Context, req dto.BulkLessonRequest) (*models.BatchResult, error) {
	if err := s.checkBulk(ctx, req); err != nil {
		return nil, err
	}
	result := s.newResult(ctx, BatchKindBulk, len(req.Entries))
	return s.runBulk(ctx, result, req)
}

// SubmitBulk validates the batch and schedules it on the worker queue.
func (s *BulkScheduleService) SubmitBulk(ctx context.Context, req dto.BulkLessonRequest) (*models.BatchResult, error) {
	if err := s.checkBulk(ctx, req); err != nil {
		return nil, err
	}
	result := s.newResult(ctx, BatchKindBulk, len(req.Entries))
	return s.enqueue(ctx, result, batchPayload{Tenant: tenant.FromContext(ctx), Bulk: &req})
}

// GenerateWeek creates the week template and places its lessons, waiting for the outcome.
func (s *BulkScheduleService) GenerateWeek(ctx context.Context, req dto.WeekTemplateRequest) (*models.BatchResult, error) {
	if err := s.checkWeek(ctx, req); err != nil {
		return nil, err
	}
	result := s.newResult(ctx, BatchKindWeek, len(req.Lessons))
	return s.runWeek(ctx, result, req)
}

// SubmitWeek validates the template and schedules generation on the worker queue.
func (s *BulkScheduleService) SubmitWeek(ctx context.Context, req dto.WeekTemplateRequest) (*models.BatchResult, error) {
	if err := s.checkWeek(ctx, req); err != nil {
		return nil, err
	}
	result := s.newResult(ctx, BatchKindWeek, len(req.Lessons))
	return s.enqueue(ctx, result, batchPayload{Tenant: tenant.FromContext(ctx), Week: &req})
}

// GetBatch returns the latest progress of a batch owned by the request tenant.
func (s *BulkScheduleService) GetBatch(ctx context.Context, id string) (*models.BatchResult, error) {
	result, ok := s.tracker.Get(tenant.FromContext(ctx), id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}
	return &result, nil
}

// HandleJob executes a queued batch. It never asks the queue to retry because
// entries that were already committed would be submitted twice.
func (s *BulkScheduleService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(batchPayload)
	if !ok {
		s.logger.Error("unexpected batch payload", zap.String("batch_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	ctx = tenant.WithTenant(ctx, payload.Tenant)
	result, found := s.tracker.Get(payload.Tenant, job.ID)
	if !found {
		s.logger.Warn("batch expired before execution", zap.String("batch_id", job.ID))
		return nil
	}

	var err error
	switch {
	case payload.Bulk != nil:
		_, err = s.runBulk(ctx, &result, *payload.Bulk)
	case payload.Week != nil:
		_, err = s.runWeek(ctx, &result, *payload.Week)
	}
	if err != nil {
		s.logger.Warn("batch failed", zap.String("batch_id", job.ID), zap.Error(err))
	}
	return nil
}

func (s *BulkScheduleService) checkBulk(ctx context.Context, req dto.BulkLessonRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk lesson payload")
	}
	if len(req.Entries) > s.cfg.MaxEntries {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("a batch accepts at most %d entries", s.cfg.MaxEntries))
	}
	_, ok, err := s.timetable.registry.GradeByID(ctx, req.GradeID)
	if err != nil {
		return err
	}
	if !ok {
		return referentialError("grade %s", req.GradeID)
	}
	return nil
}

func (s *BulkScheduleService) checkWeek(ctx context.Context, req dto.WeekTemplateRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week template payload")
	}
	if len(req.Lessons) > s.cfg.MaxEntries {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("a batch accepts at most %d entries", s.cfg.MaxEntries))
	}
	start, _ := time.Parse("15:04", req.StartTime)
	end := start.Add(time.Duration(req.PeriodCount*req.PeriodDurationMinutes) * time.Minute)
	if end.Day() != start.Day() {
		return appErrors.Clone(appErrors.ErrValidation, "periods must end before midnight")
	}
	for _, gradeID := range req.GradeIDs {
		_, ok, err := s.timetable.registry.GradeByID(ctx, gradeID)
		if err != nil {
			return err
		}
		if !ok {
			return referentialError("grade %s", gradeID)
		}
	}
	return nil
}

func (s *BulkScheduleService) newResult(ctx context.Context, kind string, total int) *models.BatchResult {
	result := &models.BatchResult{
		BatchID:   uuid.NewString(),
		Kind:      kind,
		State:     models.BatchIdle,
		Total:     total,
		Results:   make([]models.BatchEntryResult, 0, total),
		StartedAt: time.Now().UTC(),
	}
	s.tracker.Save(tenant.FromContext(ctx), *result)
	return result
}

func (s *BulkScheduleService) enqueue(ctx context.Context, result *models.BatchResult, payload batchPayload) (*models.BatchResult, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "asynchronous batches are not enabled")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: result.BatchID, Type: result.Kind, Payload: payload}); err != nil {
		s.finish(ctx, result, time.Now(), err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue batch")
	}
	s.logger.Info("batch queued", zap.String("batch_id", result.BatchID), zap.String("kind", result.Kind), zap.Int("total", result.Total))
	return result, nil
}

func (s *BulkScheduleService) runBulk(ctx context.Context, result *models.BatchResult, req dto.BulkLessonRequest) (*models.BatchResult, error) {
	return s.execute(ctx, result, req.TermID, func(context.Context) ([]batchItem, error) {
		items := make([]batchItem, len(req.Entries))
		for i, item := range req.Entries {
			if err := s.validator.Struct(item); err != nil {
				items[i].err = appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson entry")
				continue
			}
			items[i].entry = models.LessonEntry{
				ID:         models.PendingIDPrefix + uuid.NewString(),
				TermID:     req.TermID,
				GradeID:    req.GradeID,
				StreamID:   trimmedOrNil(item.StreamID),
				SubjectID:  item.SubjectID,
				TeacherID:  item.TeacherID,
				TimeSlotID: item.TimeSlotID,
				DayOfWeek:  req.DayOfWeek,
				RoomNumber: trimmedOrNil(item.RoomNumber),
			}
		}
		return items, nil
	})
}

func (s *BulkScheduleService) runWeek(ctx context.Context, result *models.BatchResult, req dto.WeekTemplateRequest) (*models.BatchResult, error) {
	return s.execute(ctx, result, req.TermID, func(ctx context.Context) ([]batchItem, error) {
		created, err := s.templates.CreateWeekTemplate(ctx, buildWeekTemplate(req))
		if err != nil {
			return nil, persistenceError(err, "failed to create week template")
		}
		result.Template = created

		grades := make(map[string]struct{}, len(req.GradeIDs))
		for _, id := range req.GradeIDs {
			grades[id] = struct{}{}
		}
		items := make([]batchItem, len(req.Lessons))
		for i, lesson := range req.Lessons {
			if err := s.validator.Struct(lesson); err != nil {
				items[i].err = appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson entry")
				continue
			}
			if _, ok := grades[lesson.GradeID]; !ok {
				items[i].err = appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grade %s is not part of the template", lesson.GradeID))
				continue
			}
			slot, ok := created.SlotForPeriod(lesson.DayOfWeek, lesson.Period)
			if !ok {
				items[i].err = appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period %d on day %d is not part of the template", lesson.Period, lesson.DayOfWeek))
				continue
			}
			items[i].entry = models.LessonEntry{
				ID:         models.PendingIDPrefix + uuid.NewString(),
				TermID:     req.TermID,
				GradeID:    lesson.GradeID,
				StreamID:   trimmedOrNil(lesson.StreamID),
				SubjectID:  lesson.SubjectID,
				TeacherID:  lesson.TeacherID,
				TimeSlotID: slot.ID,
				DayOfWeek:  lesson.DayOfWeek,
				RoomNumber: trimmedOrNil(lesson.RoomNumber),
			}
		}
		return items, nil
	})
}

// execute runs a prepared batch under the term lock. The batch is detached from the
// caller's cancellation so a dropped request cannot stop it half way.
func (s *BulkScheduleService) execute(ctx context.Context, result *models.BatchResult, termID string, prepare func(context.Context) ([]batchItem, error)) (*models.BatchResult, error) {
	ctx = context.WithoutCancel(ctx)
	started := time.Now()

	unlock := s.timetable.lockTerm(ctx, termID)
	defer unlock()

	result.State = models.BatchValidating
	s.tracker.Save(tenant.FromContext(ctx), *result)

	items, err := prepare(ctx)
	if err != nil {
		return s.finish(ctx, result, started, err)
	}
	slots, err := s.timetable.termSlots(ctx, termID)
	if err != nil {
		return s.finish(ctx, result, started, err)
	}
	accepted, err := s.timetable.lessons.ListLessons(ctx, models.LessonEntryFilter{TermID: termID})
	if err != nil {
		return s.finish(ctx, result, started, persistenceError(err, "failed to load existing lessons"))
	}

	result.State = models.BatchSubmitting
	touched := make(map[string]struct{})
	for i, item := range items {
		outcome := models.BatchEntryResult{Index: i}
		err := item.err
		if err == nil {
			var created *models.LessonEntry
			created, err = s.place(ctx, item.entry, slots, accepted)
			if err == nil {
				accepted = append(accepted, *created)
				touched[created.GradeID] = struct{}{}
				outcome.Entry = created
			}
		}
		if err != nil {
			outcome.Failure = entryFailure(err)
			result.Failed++
			s.logger.Debug("batch entry rejected", zap.String("batch_id", result.BatchID), zap.Int("index", i), zap.Error(err))
		} else {
			result.Succeeded++
		}
		result.Processed++
		result.Results = append(result.Results, outcome)
		s.tracker.Save(tenant.FromContext(ctx), *result)
	}

	for gradeID := range touched {
		if err := s.timetable.ReloadScope(ctx, termID, gradeID); err != nil {
			s.logger.Warn("failed to reload timetable after batch", zap.String("batch_id", result.BatchID), zap.String("grade_id", gradeID), zap.Error(err))
		}
	}
	return s.finish(ctx, result, started, nil)
}

// place runs one candidate through the same checks as a single create.
func (s *BulkScheduleService) place(ctx context.Context, entry models.LessonEntry, slots map[string]models.TimeSlot, accepted []models.LessonEntry) (*models.LessonEntry, error) {
	p, err := s.timetable.resolve(ctx, entry, slots)
	if err != nil {
		return nil, err
	}
	if err := s.timetable.ensureNoConflict(ctx, entry, p, accepted, ""); err != nil {
		return nil, err
	}
	created, err := s.timetable.submitCreate(ctx, entry)
	s.metrics.RecordLessonWrite("bulk_create", err)
	return created, err
}

func (s *BulkScheduleService) finish(ctx context.Context, result *models.BatchResult, started time.Time, err error) (*models.BatchResult, error) {
	now := time.Now().UTC()
	result.FinishedAt = &now
	switch {
	case err != nil:
		result.State = models.BatchFailed
		result.Error = entryFailure(err)
	case result.Failed > 0:
		result.State = models.BatchCompletedWithErrors
	default:
		result.State = models.BatchCompleted
	}
	s.tracker.Save(tenant.FromContext(ctx), *result)
	s.metrics.ObserveBatch(*result, time.Since(started))
	s.logger.Info("batch finished",
		zap.String("batch_id", result.BatchID),
		zap.String("kind", result.Kind),
		zap.String("state", string(result.State)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result, err
}

func entryFailure(err error) *models.EntryFailure {
	appErr := appErrors.FromError(err)
	failure := &models.EntryFailure{Code: appErr.Code, Message: appErr.Message}
	var conflictErr *models.LessonConflictError
	if errors.As(err, &conflictErr) {
		conflict := conflictErr.Conflict
		failure.Conflict = &conflict
	}
	return failure
}

// buildWeekTemplate lays out consecutive periods from the start time for every day.
func buildWeekTemplate(req dto.WeekTemplateRequest) models.WeekTemplate {
	start, _ := time.Parse("15:04", req.StartTime)
	duration := time.Duration(req.PeriodDurationMinutes) * time.Minute
	slots := make([]models.TimeSlot, 0, req.PeriodCount)
	for period := 1; period <= req.PeriodCount; period++ {
		slots = append(slots, models.TimeSlot{
			TermID:          req.TermID,
			Period:          period,
			StartTime:       start.Add(time.Duration(period-1) * duration).Format("15:04"),
			DurationMinutes: req.PeriodDurationMinutes,
		})
	}
	template := models.WeekTemplate{
		TermID:                req.TermID,
		Name:                  req.Name,
		StartTime:             req.StartTime,
		PeriodCount:           req.PeriodCount,
		PeriodDurationMinutes: req.PeriodDurationMinutes,
		DaysPerWeek:           req.DaysPerWeek,
		GradeIDs:              append([]string(nil), req.GradeIDs...),
	}
	for day := models.Monday; day < models.Monday+req.DaysPerWeek; day++ {
		daySlots := make([]models.TimeSlot, len(slots))
		copy(daySlots, slots)
		template.DayTemplates = append(template.DayTemplates, models.DayTemplate{DayOfWeek: day, TimeSlots: daySlots})
	}
	return template
}

type trackedBatch struct {
	tenant    string
	result    models.BatchResult
	updatedAt time.Time
}

// batchTracker keeps recent batch progress in memory for status polling.
type batchTracker struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]trackedBatch
}

func newBatchTracker(ttl time.Duration) *batchTracker {
	return &batchTracker{
		ttl:   ttl,
		items: make(map[string]trackedBatch),
	}
}

func (t *batchTracker) Save(tenantSlug string, result models.BatchResult) {
	result.Results = append([]models.BatchEntryResult(nil), result.Results...)
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, item := range t.items {
		if now.Sub(item.updatedAt) > t.ttl {
			delete(t.items, id)
		}
	}
	t.items[result.BatchID] = trackedBatch{tenant: tenantSlug, result: result, updatedAt: now}
}

func (t *batchTracker) Get(tenantSlug, id string) (models.BatchResult, bool) {
	t.mu.RLock()
	item, ok := t.items[id]
	t.mu.RUnlock()
	if !ok || item.tenant != tenantSlug {
		return models.BatchResult{}, false
	}
	if time.Since(item.updatedAt) > t.ttl {
		t.Delete(id)
		return models.BatchResult{}, false
	}
	return item.result, true
}

func (t *batchTracker) Delete(id string) {
	t.mu.Lock()
	delete(t.items, id)
	t.mu.Unlock()
}
