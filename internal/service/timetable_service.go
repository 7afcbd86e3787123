package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/tenant"
)

type lessonStore interface {
	ListLessons(ctx context.Context, filter models.LessonEntryFilter) ([]models.LessonEntry, error)
	FindLesson(ctx context.Context, id string) (*models.LessonEntry, error)
	CreateLesson(ctx context.Context, entry models.LessonEntry) (*models.LessonEntry, error)
	UpdateLesson(ctx context.Context, entry models.LessonEntry) (*models.LessonEntry, error)
	DeleteLesson(ctx context.Context, id string) error
}

type timeSlotStore interface {
	ListTimeSlots(ctx context.Context, termID string) ([]models.TimeSlot, error)
}

// placement holds the registry records a lesson refers to.
type placement struct {
	grade   models.Grade
	subject models.Subject
	teacher models.Teacher
	slot    models.TimeSlot
}

// TimetableService edits single lesson entries and serves the weekly grid.
// Writes of one term are serialised per tenant so check and submit happen atomically
// within the process.
type TimetableService struct {
	lessons   lessonStore
	slots     timeSlotStore
	registry  *RegistryService
	grid      *timetable.Grid
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger

	locksMu sync.Mutex
	locks   map[string]*termLock
}

// NewTimetableService wires the editor.
func NewTimetableService(lessons lessonStore, slots timeSlotStore, registry *RegistryService, grid *timetable.Grid, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *TimetableService {
	if grid == nil {
		grid = timetable.NewGrid()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		lessons:   lessons,
		slots:     slots,
		registry:  registry,
		grid:      grid,
		validator: registerValidations(validate),
		metrics:   metrics,
		logger:    logger,
		locks:     make(map[string]*termLock),
	}
}

// Create validates and commits a new lesson.
func (s *TimetableService) Create(ctx context.Context, req dto.CreateLessonRequest) (*models.LessonEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	entry := models.LessonEntry{
		ID:         models.PendingIDPrefix + uuid.NewString(),
		TermID:     req.TermID,
		GradeID:    req.GradeID,
		StreamID:   trimmedOrNil(req.StreamID),
		SubjectID:  req.SubjectID,
		TeacherID:  req.TeacherID,
		TimeSlotID: req.TimeSlotID,
		DayOfWeek:  req.DayOfWeek,
		RoomNumber: trimmedOrNil(req.RoomNumber),
	}

	unlock := s.lockTerm(ctx, entry.TermID)
	defer unlock()

	slots, err := s.termSlots(ctx, entry.TermID)
	if err != nil {
		return nil, err
	}
	p, err := s.resolve(ctx, entry, slots)
	if err != nil {
		return nil, err
	}
	existing, err := s.lessons.ListLessons(ctx, models.LessonEntryFilter{TermID: entry.TermID, DayOfWeek: entry.DayOfWeek, TimeSlotID: entry.TimeSlotID})
	if err != nil {
		return nil, persistenceError(err, "failed to check lesson conflicts")
	}
	if err := s.ensureNoConflict(ctx, entry, p, existing, ""); err != nil {
		return nil, err
	}

	created, err := s.submitCreate(ctx, entry)
	s.metrics.RecordLessonWrite("create", err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update changes subject, teacher or room of an entry. Day, slot, grade, stream and term
// are never modified.
func (s *TimetableService) Update(ctx context.Context, id string, req dto.UpdateLessonRequest) (*models.LessonEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	current, unlock, err := s.lockEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	updated := *current
	if req.SubjectID != nil {
		updated.SubjectID = strings.TrimSpace(*req.SubjectID)
	}
	if req.TeacherID != nil {
		updated.TeacherID = strings.TrimSpace(*req.TeacherID)
	}
	if req.RoomNumber != nil {
		updated.RoomNumber = trimmedOrNil(req.RoomNumber)
	}

	grade, ok, err := s.registry.GradeByID(ctx, updated.GradeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, referentialError("grade %s", updated.GradeID)
	}
	p := placement{grade: grade}
	if updated.SubjectID != current.SubjectID {
		if p.subject, err = s.resolveSubject(ctx, grade, updated.SubjectID); err != nil {
			return nil, err
		}
	}
	if updated.TeacherID != current.TeacherID {
		if p.teacher, err = s.resolveTeacher(ctx, grade, updated.TeacherID); err != nil {
			return nil, err
		}
		existing, err := s.lessons.ListLessons(ctx, models.LessonEntryFilter{TermID: updated.TermID, DayOfWeek: updated.DayOfWeek, TimeSlotID: updated.TimeSlotID})
		if err != nil {
			return nil, persistenceError(err, "failed to check lesson conflicts")
		}
		if err := s.ensureNoConflict(ctx, updated, p, existing, updated.ID); err != nil {
			return nil, err
		}
	}

	result, err := s.lessons.UpdateLesson(ctx, updated)
	s.metrics.RecordLessonWrite("update", err)
	if err != nil {
		return nil, persistenceError(err, "failed to update lesson")
	}
	result.ID = current.ID
	result.TermID = current.TermID
	result.GradeID = current.GradeID
	result.StreamID = current.StreamID
	result.DayOfWeek = current.DayOfWeek
	result.TimeSlotID = current.TimeSlotID
	s.grid.Put(tenant.FromContext(ctx), *result)
	return result, nil
}

// Delete removes an entry.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	current, unlock, err := s.lockEntry(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.lessons.DeleteLesson(ctx, current.ID)
	s.metrics.RecordLessonWrite("delete", err)
	if err != nil {
		if isNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return persistenceError(err, "failed to delete lesson")
	}
	s.grid.Remove(tenant.FromContext(ctx), id)
	return nil
}

// Get loads a single entry.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.LessonEntry, error) {
	return s.find(ctx, id)
}

// ListTimeSlots returns the periods of a term ordered by period number.
func (s *TimetableService) ListTimeSlots(ctx context.Context, termID string) ([]models.TimeSlot, error) {
	if err := s.validator.Var(termID, "required,entity_id"); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term id")
	}
	slots, err := s.slots.ListTimeSlots(ctx, termID)
	if err != nil {
		return nil, persistenceError(err, "failed to list time slots")
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Period < slots[j].Period })
	return slots, nil
}

// ReloadScope replaces the grid contents of a grade for a term with the backend state.
func (s *TimetableService) ReloadScope(ctx context.Context, termID, gradeID string) error {
	entries, err := s.lessons.ListLessons(ctx, models.LessonEntryFilter{TermID: termID, GradeID: gradeID})
	if err != nil {
		return persistenceError(err, "failed to load timetable")
	}
	s.grid.Replace(timetable.Scope{Tenant: tenant.FromContext(ctx), TermID: termID, GradeID: gradeID}, entries)
	return nil
}

// Entries returns the grid entries of a grade, loading them on first access.
func (s *TimetableService) Entries(ctx context.Context, termID, gradeID string) ([]models.LessonEntry, error) {
	scope := timetable.Scope{Tenant: tenant.FromContext(ctx), TermID: termID, GradeID: gradeID}
	if !s.grid.Loaded(scope) {
		if err := s.ReloadScope(ctx, termID, gradeID); err != nil {
			return nil, err
		}
	}
	return s.grid.Entries(scope), nil
}

// Grid builds the weekly view of a grade for a term.
func (s *TimetableService) Grid(ctx context.Context, termID, gradeID string) (*dto.TimetableGrid, error) {
	if err := s.validator.Var(termID, "required,entity_id"); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term id")
	}
	grade, ok, err := s.registry.GradeByID(ctx, gradeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}
	slots, err := s.ListTimeSlots(ctx, termID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Entries(ctx, termID, gradeID)
	if err != nil {
		return nil, err
	}

	cells := s.grid.EntriesFor(timetable.Scope{Tenant: tenant.FromContext(ctx), TermID: termID, GradeID: gradeID})

	view := &dto.TimetableGrid{TermID: termID, GradeID: gradeID, GradeName: grade.Name, TimeSlots: slots, Entries: len(entries)}
	for day := models.Monday; day <= models.Friday; day++ {
		column := dto.TimetableDay{DayOfWeek: day, Name: models.WeekdayName(day), Periods: make([]dto.TimetablePeriod, 0, len(slots))}
		for _, slot := range slots {
			period := dto.TimetablePeriod{TimeSlotID: slot.ID, Period: slot.Period, StartTime: slot.StartTime, Lessons: []dto.LessonDisplay{}}
			for _, e := range cells[timetable.Cell{DayOfWeek: day, TimeSlotID: slot.ID}] {
				period.Lessons = append(period.Lessons, s.display(ctx, e))
			}
			column.Periods = append(column.Periods, period)
		}
		view.Days = append(view.Days, column)
	}
	return view, nil
}

// AvailableTeachers lists qualified teachers not yet teaching in the slot.
func (s *TimetableService) AvailableTeachers(ctx context.Context, query dto.AvailableTeachersQuery) ([]models.Teacher, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	grade, ok, err := s.registry.GradeByID(ctx, query.GradeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, referentialError("grade %s", query.GradeID)
	}
	teachers, err := s.registry.Teachers(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.lessons.ListLessons(ctx, models.LessonEntryFilter{TermID: query.TermID, DayOfWeek: query.DayOfWeek, TimeSlotID: query.TimeSlotID})
	if err != nil {
		return nil, persistenceError(err, "failed to load lessons")
	}
	busy := timetable.BusyTeachers(query.TermID, query.DayOfWeek, query.TimeSlotID, existing)
	if !timetable.HasQualificationData(grade, teachers) {
		grade.Name = ""
	}
	return timetable.AvailableTeachers(grade, teachers, busy), nil
}

func (s *TimetableService) find(ctx context.Context, id string) (*models.LessonEntry, error) {
	if err := s.validator.Var(id, "required,entity_id"); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson id")
	}
	entry, err := s.lessons.FindLesson(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, persistenceError(err, "failed to load lesson")
	}
	if entry == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	return entry, nil
}

func (s *TimetableService) termSlots(ctx context.Context, termID string) (map[string]models.TimeSlot, error) {
	slots, err := s.slots.ListTimeSlots(ctx, termID)
	if err != nil {
		return nil, persistenceError(err, "failed to load time slots")
	}
	byID := make(map[string]models.TimeSlot, len(slots))
	for _, slot := range slots {
		byID[slot.ID] = slot
	}
	return byID, nil
}

// resolve checks every id the entry refers to against the registry and the term's
// time slots, including the subject level and teacher qualification rules.
func (s *TimetableService) resolve(ctx context.Context, entry models.LessonEntry, slots map[string]models.TimeSlot) (placement, error) {
	var p placement
	if entry.DayOfWeek < models.Monday || entry.DayOfWeek > models.Friday {
		return p, appErrors.Clone(appErrors.ErrValidation, "day of week must be between 1 and 5")
	}

	grade, ok, err := s.registry.GradeByID(ctx, entry.GradeID)
	if err != nil {
		return p, err
	}
	if !ok {
		return p, referentialError("grade %s", entry.GradeID)
	}
	p.grade = grade

	if stream := entry.Stream(); stream != "" {
		st, ok, err := s.registry.StreamByID(ctx, stream)
		if err != nil {
			return p, err
		}
		if !ok {
			return p, referentialError("stream %s", stream)
		}
		if st.GradeID != grade.ID {
			return p, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("stream %s does not belong to grade %s", st.Name, grade.Name))
		}
	}

	slot, ok := slots[entry.TimeSlotID]
	if !ok {
		return p, referentialError("time slot %s", entry.TimeSlotID)
	}
	p.slot = slot

	if p.subject, err = s.resolveSubject(ctx, grade, entry.SubjectID); err != nil {
		return p, err
	}
	if p.teacher, err = s.resolveTeacher(ctx, grade, entry.TeacherID); err != nil {
		return p, err
	}
	return p, nil
}

func (s *TimetableService) resolveSubject(ctx context.Context, grade models.Grade, subjectID string) (models.Subject, error) {
	subject, ok, err := s.registry.SubjectByID(ctx, subjectID)
	if err != nil {
		return subject, err
	}
	if !ok {
		return subject, referentialError("subject %s", subjectID)
	}
	if grade.LevelID != "" && subject.LevelID != grade.LevelID {
		return subject, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s is not offered at the level of %s", subject.Name, grade.Name))
	}
	return subject, nil
}

func (s *TimetableService) resolveTeacher(ctx context.Context, grade models.Grade, teacherID string) (models.Teacher, error) {
	teacher, ok, err := s.registry.TeacherByID(ctx, teacherID)
	if err != nil {
		return teacher, err
	}
	if !ok {
		return teacher, referentialError("teacher %s", teacherID)
	}
	if timetable.IsQualified(grade, teacher) {
		return teacher, nil
	}
	teachers, err := s.registry.Teachers(ctx)
	if err != nil {
		return teacher, err
	}
	if timetable.HasQualificationData(grade, teachers) {
		return teacher, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("teacher %s is not qualified to teach %s", teacher.Name, grade.Name))
	}
	return teacher, nil
}

func (s *TimetableService) ensureNoConflict(ctx context.Context, entry models.LessonEntry, p placement, existing []models.LessonEntry, ignoreID string) error {
	result := timetable.CheckConflict(timetable.CandidateFromEntry(entry), existing, ignoreID)
	if result.OK {
		return nil
	}
	s.metrics.RecordConflict(result.Reason)
	return s.wrapConflict(ctx, result, p)
}

func (s *TimetableService) wrapConflict(ctx context.Context, result timetable.Result, p placement) error {
	other := result.Conflicting
	conflict := models.LessonConflict{
		Reason:     result.Reason,
		EntryID:    other.ID,
		TermID:     other.TermID,
		DayOfWeek:  other.DayOfWeek,
		TimeSlotID: other.TimeSlotID,
		GradeID:    other.GradeID,
		TeacherID:  other.TeacherID,
	}
	if g, ok, err := s.registry.GradeByID(ctx, other.GradeID); err == nil && ok {
		conflict.GradeName = g.Name
	}
	if t, ok, err := s.registry.TeacherByID(ctx, other.TeacherID); err == nil && ok {
		conflict.TeacherName = t.Name
	}

	var message string
	switch result.Reason {
	case models.ConflictTeacherBusy:
		message = fmt.Sprintf("teacher %s is already teaching %s at this time", nameOr(conflict.TeacherName, other.TeacherID), nameOr(conflict.GradeName, other.GradeID))
	default:
		message = fmt.Sprintf("grade %s already has a lesson at this time", nameOr(p.grade.Name, other.GradeID))
	}
	domainErr := &models.LessonConflictError{Reason: result.Reason, Message: message, Conflict: conflict}
	appErr := appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("lesson conflict: %s", message))
	appErr.Details = conflict
	return appErr
}

func (s *TimetableService) submitCreate(ctx context.Context, entry models.LessonEntry) (*models.LessonEntry, error) {
	created, err := s.lessons.CreateLesson(ctx, entry)
	if err != nil {
		return nil, persistenceError(err, "failed to create lesson")
	}
	s.grid.Put(tenant.FromContext(ctx), *created)
	return created, nil
}

func (s *TimetableService) display(ctx context.Context, e models.LessonEntry) dto.LessonDisplay {
	item := dto.LessonDisplay{LessonEntry: e}
	if subject, ok, err := s.registry.SubjectByID(ctx, e.SubjectID); err == nil && ok {
		item.SubjectName = subject.Name
		item.SubjectColor = subject.Color
	}
	if teacher, ok, err := s.registry.TeacherByID(ctx, e.TeacherID); err == nil && ok {
		item.TeacherName = teacher.Name
	}
	if stream := e.Stream(); stream != "" {
		if st, ok, err := s.registry.StreamByID(ctx, stream); err == nil && ok {
			item.StreamName = st.Name
		}
	}
	return item
}

// lockTerm serialises writes of one tenant term. The returned func releases the lock
// and drops the mutex once no caller holds or waits for it.
func (s *TimetableService) lockTerm(ctx context.Context, termID string) func() {
	key := tenant.FromContext(ctx) + "/" + termID
	s.locksMu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &termLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.locksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.locksMu.Unlock()
	}
}

// lockEntry takes the term lock of an entry and returns the entry as stored once the
// lock is held, so edits never build on a copy read before a concurrent write.
func (s *TimetableService) lockEntry(ctx context.Context, id string) (*models.LessonEntry, func(), error) {
	before, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	unlock := s.lockTerm(ctx, before.TermID)
	current, err := s.find(ctx, id)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return current, unlock, nil
}

type termLock struct {
	mu   sync.Mutex
	refs int
}

func referentialError(format string, args ...any) error {
	return appErrors.Clone(appErrors.ErrReferential, fmt.Sprintf(format+" not found, reload and try again", args...))
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
