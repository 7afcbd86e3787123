package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

const testTerm = "term-1"

type mockRegistrySource struct {
	levels   []models.Level
	grades   []models.Grade
	streams  []models.Stream
	subjects []models.Subject
	teachers []models.Teacher
	err      error
	loads    int
}

func (m *mockRegistrySource) ListLevels(ctx context.Context) ([]models.Level, error) {
	m.loads++
	if m.err != nil {
		return nil, m.err
	}
	return m.levels, nil
}

func (m *mockRegistrySource) ListGrades(ctx context.Context) ([]models.Grade, error) {
	return m.grades, nil
}

func (m *mockRegistrySource) ListStreams(ctx context.Context) ([]models.Stream, error) {
	return m.streams, nil
}

func (m *mockRegistrySource) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	return m.subjects, nil
}

func (m *mockRegistrySource) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	return m.teachers, nil
}

func newSchoolSource() *mockRegistrySource {
	return &mockRegistrySource{
		levels: []models.Level{
			{ID: "lp", Name: "Lower Primary", CurriculumID: "cbc", Position: 1},
			{ID: "up", Name: "Upper Primary", CurriculumID: "cbc", Position: 2},
		},
		grades: []models.Grade{
			{ID: "g7", Name: "Grade 7", LevelID: "up", StreamIDs: pq.StringArray{"s7w", "s7e"}},
			{ID: "g3", Name: "Grade 3", LevelID: "lp"},
			{ID: "g5", Name: "Grade 5", LevelID: "up"},
			{ID: "g1", Name: "Grade 1", LevelID: "lp"},
			{ID: "pp1", Name: "PP1", LevelID: "lp"},
		},
		streams: []models.Stream{
			{ID: "s7e", Name: "East", GradeID: "g7", Position: 1},
			{ID: "s7w", Name: "West", GradeID: "g7", Position: 2},
		},
		subjects: []models.Subject{
			{ID: "eng", Name: "English", LevelID: "lp", Position: 2},
			{ID: "math", Name: "Mathematics", LevelID: "lp", Position: 1},
			{ID: "sci", Name: "Science", LevelID: "up", Position: 1},
			{ID: "kis", Name: "Kiswahili", LevelID: "up", Position: 2},
		},
		teachers: []models.Teacher{
			{ID: "jane", Name: "Jane", GradeIDs: pq.StringArray{"g3", "g5", "g7"}},
			{ID: "tom", Name: "Tom", GradeLevels: pq.StringArray{" grade 3 "}},
			{ID: "ben", Name: "Ben", GradeIDs: pq.StringArray{"g5"}},
			{ID: "amina", Name: "Amina", GradeIDs: pq.StringArray{"g7"}},
		},
	}
}

type mockLessonStore struct {
	mu          sync.Mutex
	items       map[string]models.LessonEntry
	seq         int
	createCalls int
	createErr   func(call int, entry models.LessonEntry) error
	listErr     error
	updateErr   error
}

func newMockLessonStore(entries ...models.LessonEntry) *mockLessonStore {
	store := &mockLessonStore{items: make(map[string]models.LessonEntry)}
	for _, e := range entries {
		store.items[e.ID] = e
	}
	return store
}

func (m *mockLessonStore) ListLessons(ctx context.Context, filter models.LessonEntryFilter) ([]models.LessonEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.LessonEntry, 0)
	for _, e := range m.items {
		if filter.TermID != "" && e.TermID != filter.TermID {
			continue
		}
		if filter.GradeID != "" && e.GradeID != filter.GradeID {
			continue
		}
		if filter.TeacherID != "" && e.TeacherID != filter.TeacherID {
			continue
		}
		if filter.DayOfWeek != 0 && e.DayOfWeek != filter.DayOfWeek {
			continue
		}
		if filter.TimeSlotID != "" && e.TimeSlotID != filter.TimeSlotID {
			continue
		}
		out = append(out, e)
	}
	timetable.SortEntries(out)
	return out, nil
}

func (m *mockLessonStore) FindLesson(ctx context.Context, id string) (*models.LessonEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (m *mockLessonStore) CreateLesson(ctx context.Context, entry models.LessonEntry) (*models.LessonEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		if err := m.createErr(m.createCalls, entry); err != nil {
			return nil, err
		}
	}
	m.seq++
	entry.ID = fmt.Sprintf("lesson-%d", m.seq)
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	m.items[entry.ID] = entry
	return &entry, nil
}

func (m *mockLessonStore) UpdateLesson(ctx context.Context, entry models.LessonEntry) (*models.LessonEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if _, ok := m.items[entry.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	entry.UpdatedAt = time.Now().UTC()
	m.items[entry.ID] = entry
	return &entry, nil
}

func (m *mockLessonStore) DeleteLesson(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockLessonStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// pausingLessonStore holds the first FindLesson after it has read the entry, until
// release is closed.
type pausingLessonStore struct {
	*mockLessonStore
	paused  atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newPausingLessonStore(store *mockLessonStore) *pausingLessonStore {
	return &pausingLessonStore{
		mockLessonStore: store,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (p *pausingLessonStore) FindLesson(ctx context.Context, id string) (*models.LessonEntry, error) {
	entry, err := p.mockLessonStore.FindLesson(ctx, id)
	if p.paused.CompareAndSwap(false, true) {
		close(p.entered)
		<-p.release
	}
	return entry, err
}

type mockSlotStore struct {
	mu    sync.Mutex
	slots map[string][]models.TimeSlot
	err   error
}

func newMockSlotStore() *mockSlotStore {
	return &mockSlotStore{slots: map[string][]models.TimeSlot{
		testTerm: {
			{ID: "slot-2", TermID: testTerm, Period: 2, StartTime: "08:40", DurationMinutes: 40},
			{ID: "slot-1", TermID: testTerm, Period: 1, StartTime: "08:00", DurationMinutes: 40},
			{ID: "slot-3", TermID: testTerm, Period: 3, StartTime: "09:20", DurationMinutes: 40},
		},
	}}
}

func (m *mockSlotStore) ListTimeSlots(ctx context.Context, termID string) ([]models.TimeSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.TimeSlot, len(m.slots[termID]))
	copy(out, m.slots[termID])
	return out, nil
}

type mockTemplateStore struct {
	slots   *mockSlotStore
	created []models.WeekTemplate
	err     error
}

func (m *mockTemplateStore) CreateWeekTemplate(ctx context.Context, template models.WeekTemplate) (*models.WeekTemplate, error) {
	if m.err != nil {
		return nil, m.err
	}
	template.ID = fmt.Sprintf("tpl-%d", len(m.created)+1)
	var slots []models.TimeSlot
	for i := range template.DayTemplates {
		for j := range template.DayTemplates[i].TimeSlots {
			slot := &template.DayTemplates[i].TimeSlots[j]
			slot.ID = fmt.Sprintf("%s-p%d", template.TermID, slot.Period)
			if i == 0 {
				slots = append(slots, *slot)
			}
		}
	}
	m.slots.mu.Lock()
	m.slots.slots[template.TermID] = slots
	m.slots.mu.Unlock()
	m.created = append(m.created, template)
	return &template, nil
}

type stubCacheRepo struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
}

func (s *stubCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	s.store[key] = raw
	s.sets++
	return nil
}

func (s *stubCacheRepo) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.store, key)
	}
	return nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type testHarness struct {
	source    *mockRegistrySource
	lessons   *mockLessonStore
	slots     *mockSlotStore
	templates *mockTemplateStore
	registry  *RegistryService
	grid      *timetable.Grid
	timetable *TimetableService
	bulk      *BulkScheduleService
	metrics   *MetricsService
}

func newTestHarness(t *testing.T, entries ...models.LessonEntry) *testHarness {
	t.Helper()
	h := &testHarness{
		source:  newSchoolSource(),
		lessons: newMockLessonStore(entries...),
		slots:   newMockSlotStore(),
		grid:    timetable.NewGrid(),
		metrics: NewMetricsService(),
	}
	h.templates = &mockTemplateStore{slots: h.slots}
	h.registry = NewRegistryService(h.source, nil, h.metrics, zap.NewNop())
	h.timetable = NewTimetableService(h.lessons, h.slots, h.registry, h.grid, nil, h.metrics, zap.NewNop())
	h.bulk = NewBulkScheduleService(h.timetable, h.templates, nil, h.metrics, zap.NewNop(), BulkScheduleConfig{MaxEntries: 10, StatusTTL: time.Minute})
	return h
}

func lesson(id, grade, teacher, subject, slot string, day int) models.LessonEntry {
	return models.LessonEntry{
		ID:         id,
		TermID:     testTerm,
		GradeID:    grade,
		SubjectID:  subject,
		TeacherID:  teacher,
		TimeSlotID: slot,
		DayOfWeek:  day,
	}
}

func strPtr(s string) *string {
	return &s
}

func errorCode(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
