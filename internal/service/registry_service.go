package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/gradelevel"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/tenant"
)

type registrySource interface {
	ListLevels(ctx context.Context) ([]models.Level, error)
	ListGrades(ctx context.Context) ([]models.Grade, error)
	ListStreams(ctx context.Context) ([]models.Stream, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
}

// RegistrySnapshot is the cached school configuration of one tenant.
type RegistrySnapshot struct {
	Levels   []models.Level   `json:"levels"`
	Grades   []models.Grade   `json:"grades"`
	Streams  []models.Stream  `json:"streams"`
	Subjects []models.Subject `json:"subjects"`
	Teachers []models.Teacher `json:"teachers"`
	LoadedAt time.Time        `json:"loaded_at"`
}

type registryIndex struct {
	snapshot RegistrySnapshot
	grades   map[string]models.Grade
	streams  map[string]models.Stream
	subjects map[string]models.Subject
	teachers map[string]models.Teacher
}

func newRegistryIndex(snapshot RegistrySnapshot) *registryIndex {
	idx := &registryIndex{
		snapshot: snapshot,
		grades:   make(map[string]models.Grade, len(snapshot.Grades)),
		streams:  make(map[string]models.Stream, len(snapshot.Streams)),
		subjects: make(map[string]models.Subject, len(snapshot.Subjects)),
		teachers: make(map[string]models.Teacher, len(snapshot.Teachers)),
	}
	for _, g := range snapshot.Grades {
		idx.grades[g.ID] = g
	}
	for _, s := range snapshot.Streams {
		idx.streams[s.ID] = s
	}
	for _, s := range snapshot.Subjects {
		idx.subjects[s.ID] = s
	}
	for _, t := range snapshot.Teachers {
		idx.teachers[t.ID] = t
	}
	return idx
}

// RegistryService serves the read-mostly school configuration (levels, grades, streams,
// subjects and teachers). Each tenant snapshot is replaced wholesale, on Refresh or once
// it is older than the snapshot TTL.
type RegistryService struct {
	source  registrySource
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	tenants map[string]*registryIndex
}

// NewRegistryService constructs a registry backed by the given source.
func NewRegistryService(source registrySource, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *RegistryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryService{
		source:  source,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		tenants: make(map[string]*registryIndex),
	}
}

// SetSnapshotTTL bounds how long a loaded snapshot is served before it is reloaded.
// Zero keeps snapshots until Refresh.
func (s *RegistryService) SetSnapshotTTL(ttl time.Duration) {
	s.ttl = ttl
}

// Snapshot returns the current configuration of the request tenant.
func (s *RegistryService) Snapshot(ctx context.Context) (RegistrySnapshot, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return RegistrySnapshot{}, err
	}
	return idx.snapshot, nil
}

// Refresh reloads the tenant snapshot from the persistence backend.
func (s *RegistryService) Refresh(ctx context.Context) (RegistrySnapshot, error) {
	slug := tenant.FromContext(ctx)
	_ = s.cache.Invalidate(ctx, registryCacheKey(slug))
	idx, err := s.load(ctx, slug)
	if err != nil {
		return RegistrySnapshot{}, err
	}
	return idx.snapshot, nil
}

// Grades lists grades ordered by their classified rank with abbreviations.
func (s *RegistryService) Grades(ctx context.Context) ([]models.GradeSummary, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.GradeSummary, 0, len(idx.snapshot.Grades))
	for _, g := range idx.snapshot.Grades {
		class := gradelevel.Classify(g.Name)
		summaries = append(summaries, models.GradeSummary{Grade: g, Abbreviation: class.Label, Rank: class.Rank})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return gradelevel.Compare(summaries[i].Name, summaries[j].Name) < 0
	})
	return summaries, nil
}

// GradeByID resolves a grade.
func (s *RegistryService) GradeByID(ctx context.Context, id string) (models.Grade, bool, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return models.Grade{}, false, err
	}
	g, ok := idx.grades[id]
	return g, ok, nil
}

// SubjectByID resolves a subject.
func (s *RegistryService) SubjectByID(ctx context.Context, id string) (models.Subject, bool, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return models.Subject{}, false, err
	}
	subject, ok := idx.subjects[id]
	return subject, ok, nil
}

// TeacherByID resolves a teacher.
func (s *RegistryService) TeacherByID(ctx context.Context, id string) (models.Teacher, bool, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return models.Teacher{}, false, err
	}
	t, ok := idx.teachers[id]
	return t, ok, nil
}

// StreamByID resolves a stream.
func (s *RegistryService) StreamByID(ctx context.Context, id string) (models.Stream, bool, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return models.Stream{}, false, err
	}
	st, ok := idx.streams[id]
	return st, ok, nil
}

// SubjectsForLevel returns the subjects of a level in configured order.
func (s *RegistryService) SubjectsForLevel(ctx context.Context, levelID string) ([]models.Subject, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	subjects := make([]models.Subject, 0)
	for _, subject := range idx.snapshot.Subjects {
		if subject.LevelID == levelID {
			subjects = append(subjects, subject)
		}
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		return subjects[i].Position < subjects[j].Position
	})
	return subjects, nil
}

// StreamsForGrade returns the streams of a grade following the grade's stream order.
// Streams missing from that order are appended by position.
func (s *RegistryService) StreamsForGrade(ctx context.Context, gradeID string) ([]models.Stream, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	grade, ok := idx.grades[gradeID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}
	streams := make([]models.Stream, 0, len(grade.StreamIDs))
	seen := make(map[string]struct{}, len(grade.StreamIDs))
	for _, id := range grade.StreamIDs {
		if st, ok := idx.streams[id]; ok {
			streams = append(streams, st)
			seen[id] = struct{}{}
		}
	}
	var extra []models.Stream
	for _, st := range idx.snapshot.Streams {
		if _, dup := seen[st.ID]; dup || st.GradeID != gradeID {
			continue
		}
		extra = append(extra, st)
	}
	sort.SliceStable(extra, func(i, j int) bool { return extra[i].Position < extra[j].Position })
	return append(streams, extra...), nil
}

// Teachers returns every teacher of the tenant.
func (s *RegistryService) Teachers(ctx context.Context) ([]models.Teacher, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Teacher, len(idx.snapshot.Teachers))
	copy(out, idx.snapshot.Teachers)
	return out, nil
}

// QualifiedTeachers lists the teachers allowed to teach the grade.
func (s *RegistryService) QualifiedTeachers(ctx context.Context, gradeID string) ([]models.Teacher, error) {
	idx, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	grade, ok := idx.grades[gradeID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}
	return timetable.QualifiedTeachers(grade, idx.snapshot.Teachers), nil
}

func (s *RegistryService) index(ctx context.Context) (*registryIndex, error) {
	slug := tenant.FromContext(ctx)
	s.mu.RLock()
	idx, ok := s.tenants[slug]
	s.mu.RUnlock()
	if ok && !s.expired(idx.snapshot) {
		return idx, nil
	}

	var cached RegistrySnapshot
	if hit, err := s.cache.Get(ctx, registryCacheKey(slug), &cached); err == nil && hit && !s.expired(cached) {
		s.metrics.RecordRegistryLoad("cache")
		return s.store(slug, cached), nil
	}
	return s.load(ctx, slug)
}

func (s *RegistryService) load(ctx context.Context, slug string) (*registryIndex, error) {
	if s.source == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "registry source not configured")
	}
	var (
		snapshot RegistrySnapshot
		err      error
	)
	if snapshot.Levels, err = s.source.ListLevels(ctx); err != nil {
		return nil, persistenceError(err, "failed to load levels")
	}
	if snapshot.Grades, err = s.source.ListGrades(ctx); err != nil {
		return nil, persistenceError(err, "failed to load grades")
	}
	if snapshot.Streams, err = s.source.ListStreams(ctx); err != nil {
		return nil, persistenceError(err, "failed to load streams")
	}
	if snapshot.Subjects, err = s.source.ListSubjects(ctx); err != nil {
		return nil, persistenceError(err, "failed to load subjects")
	}
	if snapshot.Teachers, err = s.source.ListTeachers(ctx); err != nil {
		return nil, persistenceError(err, "failed to load teachers")
	}
	snapshot.LoadedAt = s.now().UTC()

	s.metrics.RecordRegistryLoad("source")
	_ = s.cache.Set(ctx, registryCacheKey(slug), snapshot, 0)
	s.logger.Info("registry loaded",
		zap.String("tenant", slug),
		zap.Int("grades", len(snapshot.Grades)),
		zap.Int("subjects", len(snapshot.Subjects)),
		zap.Int("teachers", len(snapshot.Teachers)),
	)
	return s.store(slug, snapshot), nil
}

func (s *RegistryService) expired(snapshot RegistrySnapshot) bool {
	return s.ttl > 0 && s.now().Sub(snapshot.LoadedAt) >= s.ttl
}

func (s *RegistryService) store(slug string, snapshot RegistrySnapshot) *registryIndex {
	idx := newRegistryIndex(snapshot)
	s.mu.Lock()
	s.tenants[slug] = idx
	s.mu.Unlock()
	return idx
}

func registryCacheKey(slug string) string {
	return Key(slug, "registry")
}
