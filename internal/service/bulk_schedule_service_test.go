package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/tenant"
)

func bulkItem(teacher, subject, slot string) dto.BulkLessonItem {
	return dto.BulkLessonItem{TimeSlotID: slot, SubjectID: subject, TeacherID: teacher}
}

func TestBulkCreateReportsInBatchGradeConflict(t *testing.T) {
	h := newTestHarness(t)

	result, err := h.bulk.BulkCreate(context.Background(), dto.BulkLessonRequest{
		TermID:    testTerm,
		GradeID:   "g3",
		DayOfWeek: models.Monday,
		Entries: []dto.BulkLessonItem{
			bulkItem("jane", "math", "slot-1"),
			bulkItem("tom", "eng", "slot-1"),
			bulkItem("tom", "eng", "slot-2"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompletedWithErrors, result.State)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)

	assert.NotNil(t, result.Results[0].Entry)
	assert.Nil(t, result.Results[0].Failure)

	failure := result.Results[1].Failure
	require.NotNil(t, failure)
	assert.Equal(t, appErrors.ErrConflict.Code, failure.Code)
	require.NotNil(t, failure.Conflict)
	assert.Equal(t, models.ConflictGradeBusy, failure.Conflict.Reason)
	assert.Equal(t, result.Results[0].Entry.ID, failure.Conflict.EntryID)

	assert.NotNil(t, result.Results[2].Entry)
	assert.Equal(t, 2, h.lessons.count())
}

func TestBulkCreateAcceptsOnlyNonConflictingEntries(t *testing.T) {
	h := newTestHarness(t,
		lesson("e1", "g5", "jane", "sci", "slot-2", models.Monday),
		lesson("e2", "g3", "tom", "math", "slot-3", models.Monday),
	)

	result, err := h.bulk.BulkCreate(context.Background(), dto.BulkLessonRequest{
		TermID:    testTerm,
		GradeID:   "g3",
		DayOfWeek: models.Monday,
		Entries: []dto.BulkLessonItem{
			bulkItem("jane", "math", "slot-1"), // ok
			bulkItem("jane", "eng", "slot-2"),  // jane teaches Grade 5 already
			bulkItem("jane", "eng", "slot-3"),  // grade already has e2
			bulkItem("tom", "eng", "slot-1"),   // taken earlier in this batch
			bulkItem("tom", "eng", "slot-2"),   // ok
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 3, result.Failed)

	reasons := make([]models.ConflictReason, 0)
	for _, r := range result.Results {
		if r.Failure != nil {
			require.NotNil(t, r.Failure.Conflict)
			reasons = append(reasons, r.Failure.Conflict.Reason)
		}
	}
	assert.Equal(t, []models.ConflictReason{models.ConflictTeacherBusy, models.ConflictGradeBusy, models.ConflictGradeBusy}, reasons)
	assert.Equal(t, 4, h.lessons.count())
}

func TestBulkCreateItemValidationFailsAlone(t *testing.T) {
	h := newTestHarness(t)

	result, err := h.bulk.BulkCreate(context.Background(), dto.BulkLessonRequest{
		TermID:    testTerm,
		GradeID:   "g3",
		DayOfWeek: models.Tuesday,
		Entries: []dto.BulkLessonItem{
			bulkItem("jane", "math", ""),
			bulkItem("jane", "art", "slot-1"),
			bulkItem("jane", "math", "slot-1"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, result.Results[0].Failure.Code)
	assert.Equal(t, appErrors.ErrReferential.Code, result.Results[1].Failure.Code)
	assert.Nil(t, result.Results[2].Failure)
	assert.Equal(t, 1, result.Succeeded)
}

func TestBulkCreateContinuesAfterRemoteFailure(t *testing.T) {
	h := newTestHarness(t)
	h.lessons.createErr = func(call int, _ models.LessonEntry) error {
		if call == 2 {
			return errors.New("write rejected")
		}
		return nil
	}

	result, err := h.bulk.BulkCreate(context.Background(), dto.BulkLessonRequest{
		TermID:    testTerm,
		GradeID:   "g3",
		DayOfWeek: models.Monday,
		Entries: []dto.BulkLessonItem{
			bulkItem("jane", "math", "slot-1"),
			bulkItem("jane", "math", "slot-2"),
			bulkItem("jane", "math", "slot-3"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, h.lessons.createCalls)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, appErrors.ErrRemote.Code, result.Results[1].Failure.Code)
}

func TestBulkCreatePreconditions(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	_, err := h.bulk.BulkCreate(ctx, dto.BulkLessonRequest{TermID: testTerm, GradeID: "g9", DayOfWeek: 1, Entries: []dto.BulkLessonItem{bulkItem("jane", "math", "slot-1")}})
	assert.Equal(t, appErrors.ErrReferential.Code, errorCode(err))

	_, err = h.bulk.BulkCreate(ctx, dto.BulkLessonRequest{TermID: testTerm, GradeID: "g3", DayOfWeek: 1})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	items := make([]dto.BulkLessonItem, 11)
	for i := range items {
		items[i] = bulkItem("jane", "math", "slot-1")
	}
	_, err = h.bulk.BulkCreate(ctx, dto.BulkLessonRequest{TermID: testTerm, GradeID: "g3", DayOfWeek: 1, Entries: items})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	assert.Zero(t, h.lessons.createCalls)
}

func TestBulkCreateFailsWholeBatchWhenStateCannotLoad(t *testing.T) {
	h := newTestHarness(t)
	h.lessons.listErr = errors.New("timeout")

	result, err := h.bulk.BulkCreate(context.Background(), dto.BulkLessonRequest{
		TermID:    testTerm,
		GradeID:   "g3",
		DayOfWeek: models.Monday,
		Entries:   []dto.BulkLessonItem{bulkItem("jane", "math", "slot-1")},
	})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, models.BatchFailed, result.State)
	assert.Zero(t, result.Processed)
	assert.Zero(t, h.lessons.createCalls)
}

func TestBulkCreateReloadsTouchedScopes(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	_, err := h.bulk.BulkCreate(ctx, dto.BulkLessonRequest{
		TermID:    testTerm,
		GradeID:   "g3",
		DayOfWeek: models.Monday,
		Entries:   []dto.BulkLessonItem{bulkItem("jane", "math", "slot-1"), bulkItem("tom", "eng", "slot-2")},
	})
	require.NoError(t, err)

	entries, err := h.timetable.Entries(ctx, testTerm, "g3")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGenerateWeekCreatesTemplateAndLessons(t *testing.T) {
	h := newTestHarness(t)
	req := dto.WeekTemplateRequest{
		TermID:                "term-2",
		Name:                  "Standard week",
		StartTime:             "08:00",
		PeriodCount:           4,
		PeriodDurationMinutes: 40,
		DaysPerWeek:           5,
		GradeIDs:              []string{"g3", "g5"},
		Lessons: []dto.WeekLessonItem{
			{GradeID: "g3", DayOfWeek: 1, Period: 1, SubjectID: "math", TeacherID: "jane"},
			{GradeID: "g5", DayOfWeek: 1, Period: 1, SubjectID: "sci", TeacherID: "jane"},
			{GradeID: "g5", DayOfWeek: 1, Period: 1, SubjectID: "sci", TeacherID: "ben"},
			{GradeID: "g3", DayOfWeek: 2, Period: 9, SubjectID: "math", TeacherID: "tom"},
			{GradeID: "g7", DayOfWeek: 2, Period: 1, SubjectID: "sci", TeacherID: "amina"},
		},
	}

	result, err := h.bulk.GenerateWeek(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result.Template)
	assert.Equal(t, BatchKindWeek, result.Kind)
	require.Len(t, result.Template.DayTemplates, 5)
	slots := result.Template.DayTemplates[0].TimeSlots
	require.Len(t, slots, 4)
	assert.Equal(t, []string{"08:00", "08:40", "09:20", "10:00"}, []string{slots[0].StartTime, slots[1].StartTime, slots[2].StartTime, slots[3].StartTime})

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 3, result.Failed)
	assert.Equal(t, "term-2-p1", result.Results[0].Entry.TimeSlotID)
	assert.Equal(t, models.ConflictTeacherBusy, result.Results[1].Failure.Conflict.Reason)
	assert.Nil(t, result.Results[2].Failure)
	assert.Equal(t, appErrors.ErrValidation.Code, result.Results[3].Failure.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, result.Results[4].Failure.Code)
}

func TestGenerateWeekValidatesTemplate(t *testing.T) {
	h := newTestHarness(t)
	base := dto.WeekTemplateRequest{
		TermID:                "term-2",
		Name:                  "Late week",
		StartTime:             "22:00",
		PeriodCount:           4,
		PeriodDurationMinutes: 40,
		DaysPerWeek:           5,
		GradeIDs:              []string{"g3"},
	}

	_, err := h.bulk.GenerateWeek(context.Background(), base)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	base.StartTime = "8am"
	_, err = h.bulk.GenerateWeek(context.Background(), base)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	base.StartTime = "08:00"
	base.GradeIDs = []string{"g9"}
	_, err = h.bulk.GenerateWeek(context.Background(), base)
	assert.Equal(t, appErrors.ErrReferential.Code, errorCode(err))
	assert.Empty(t, h.templates.created)
}

func TestGenerateWeekTemplateFailureFailsBatch(t *testing.T) {
	h := newTestHarness(t)
	h.templates.err = appErrors.Clone(appErrors.ErrRemote, "template service down")

	result, err := h.bulk.GenerateWeek(context.Background(), dto.WeekTemplateRequest{
		TermID:                "term-2",
		Name:                  "Week",
		StartTime:             "08:00",
		PeriodCount:           2,
		PeriodDurationMinutes: 40,
		DaysPerWeek:           5,
		GradeIDs:              []string{"g3"},
		Lessons:               []dto.WeekLessonItem{{GradeID: "g3", DayOfWeek: 1, Period: 1, SubjectID: "math", TeacherID: "jane"}},
	})
	require.Error(t, err)
	assert.Equal(t, models.BatchFailed, result.State)
	assert.Equal(t, "template service down", result.Error.Message)
	assert.Zero(t, h.lessons.createCalls)
}

func TestSubmitBulkRunsThroughQueue(t *testing.T) {
	h := newTestHarness(t)
	queue := &queueStub{}
	h.bulk.SetDispatcher(queue)
	alpha := tenant.WithTenant(context.Background(), "alpha")

	queued, err := h.bulk.SubmitBulk(alpha, dto.BulkLessonRequest{
		TermID:    testTerm,
		GradeID:   "g3",
		DayOfWeek: models.Monday,
		Entries:   []dto.BulkLessonItem{bulkItem("jane", "math", "slot-1"), bulkItem("tom", "eng", "slot-1")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.BatchIdle, queued.State)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, queued.BatchID, queue.jobs[0].ID)

	pending, err := h.bulk.GetBatch(alpha, queued.BatchID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchIdle, pending.State)

	require.NoError(t, h.bulk.HandleJob(context.Background(), queue.jobs[0]))

	done, err := h.bulk.GetBatch(alpha, queued.BatchID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchCompletedWithErrors, done.State)
	assert.Equal(t, 1, done.Succeeded)
	assert.Equal(t, 1, done.Failed)
	assert.NotNil(t, done.FinishedAt)

	_, err = h.bulk.GetBatch(context.Background(), queued.BatchID)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}

func TestSubmitBulkWithoutQueue(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.bulk.SubmitBulk(context.Background(), dto.BulkLessonRequest{
		TermID:    testTerm,
		GradeID:   "g3",
		DayOfWeek: models.Monday,
		Entries:   []dto.BulkLessonItem{bulkItem("jane", "math", "slot-1")},
	})
	assert.Equal(t, appErrors.ErrInternal.Code, errorCode(err))
}

func TestSubmitWeekEnqueueFailure(t *testing.T) {
	h := newTestHarness(t)
	h.bulk.SetDispatcher(&queueStub{err: errors.New("queue stopped")})

	_, err := h.bulk.SubmitWeek(context.Background(), dto.WeekTemplateRequest{
		TermID:                "term-2",
		Name:                  "Week",
		StartTime:             "08:00",
		PeriodCount:           2,
		PeriodDurationMinutes: 40,
		DaysPerWeek:           5,
		GradeIDs:              []string{"g3"},
	})
	assert.Equal(t, appErrors.ErrInternal.Code, errorCode(err))
}

func TestBulkCreateKeepsBackendConflictReason(t *testing.T) {
	h := newTestHarness(t)
	h.lessons.createErr = func(call int, entry models.LessonEntry) error {
		if call != 2 {
			return nil
		}
		conflictErr := &models.LessonConflictError{
			Reason:   models.ConflictTeacherBusy,
			Message:  "Tom is busy",
			Conflict: models.LessonConflict{Reason: models.ConflictTeacherBusy},
		}
		return appErrors.Wrap(conflictErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "Tom is busy")
	}

	result, err := h.bulk.BulkCreate(context.Background(), dto.BulkLessonRequest{
		TermID:    testTerm,
		GradeID:   "g3",
		DayOfWeek: models.Monday,
		Entries: []dto.BulkLessonItem{
			bulkItem("jane", "math", "slot-1"),
			bulkItem("tom", "eng", "slot-2"),
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	failure := result.Results[1].Failure
	require.NotNil(t, failure)
	assert.Equal(t, appErrors.ErrConflict.Code, failure.Code)
	assert.Equal(t, "Tom is busy", failure.Message)
	require.NotNil(t, failure.Conflict)
	assert.Equal(t, models.ConflictTeacherBusy, failure.Conflict.Reason)
}
