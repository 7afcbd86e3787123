package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/tenant"
)

func TestRegistryServiceGradesSortedWithAbbreviations(t *testing.T) {
	registry := NewRegistryService(newSchoolSource(), nil, nil, zap.NewNop())

	grades, err := registry.Grades(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(grades))
	labels := make([]string, 0, len(grades))
	for _, g := range grades {
		names = append(names, g.Name)
		labels = append(labels, g.Abbreviation)
	}
	assert.Equal(t, []string{"PP1", "Grade 1", "Grade 3", "Grade 5", "Grade 7"}, names)
	assert.Equal(t, []string{"PP1", "G1", "G3", "G5", "F1"}, labels)
	assert.Equal(t, 11, grades[4].Rank)
}

func TestRegistryServiceStreamsFollowGradeOrder(t *testing.T) {
	registry := NewRegistryService(newSchoolSource(), nil, nil, zap.NewNop())

	streams, err := registry.StreamsForGrade(context.Background(), "g7")
	require.NoError(t, err)
	require.Len(t, streams, 2)
	assert.Equal(t, "West", streams[0].Name)
	assert.Equal(t, "East", streams[1].Name)

	streams, err = registry.StreamsForGrade(context.Background(), "g3")
	require.NoError(t, err)
	assert.Empty(t, streams)

	_, err = registry.StreamsForGrade(context.Background(), "g9")
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}

func TestRegistryServiceSubjectsForLevel(t *testing.T) {
	registry := NewRegistryService(newSchoolSource(), nil, nil, zap.NewNop())

	subjects, err := registry.SubjectsForLevel(context.Background(), "lp")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "math", subjects[0].ID)
	assert.Equal(t, "eng", subjects[1].ID)

	subjects, err = registry.SubjectsForLevel(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, subjects)
}

func TestRegistryServiceLookups(t *testing.T) {
	registry := NewRegistryService(newSchoolSource(), nil, nil, zap.NewNop())
	ctx := context.Background()

	grade, ok, err := registry.GradeByID(ctx, "g5")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Grade 5", grade.Name)

	_, ok, err = registry.TeacherByID(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	qualified, err := registry.QualifiedTeachers(ctx, "g3")
	require.NoError(t, err)
	ids := []string{}
	for _, teacher := range qualified {
		ids = append(ids, teacher.ID)
	}
	assert.Equal(t, []string{"jane", "tom"}, ids)
}

func TestRegistryServiceLoadsOncePerTenant(t *testing.T) {
	source := newSchoolSource()
	registry := NewRegistryService(source, nil, nil, zap.NewNop())

	_, _, err := registry.GradeByID(context.Background(), "g3")
	require.NoError(t, err)
	_, err = registry.Teachers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.loads)

	_, err = registry.Teachers(tenant.WithTenant(context.Background(), "alpha"))
	require.NoError(t, err)
	assert.Equal(t, 2, source.loads)

	_, err = registry.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, source.loads)
}

func TestRegistryServiceUsesSnapshotCache(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	source := newSchoolSource()

	first := NewRegistryService(source, cache, nil, zap.NewNop())
	snapshot, err := first.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot.Grades, 5)
	assert.Equal(t, 1, repo.sets)
	assert.Contains(t, repo.store, "timetable:default:registry")

	second := NewRegistryService(source, cache, nil, zap.NewNop())
	grades, err := second.Grades(context.Background())
	require.NoError(t, err)
	assert.Len(t, grades, 5)
	assert.Equal(t, 1, source.loads)
}

func TestRegistryServiceSourceError(t *testing.T) {
	source := newSchoolSource()
	source.err = errors.New("connection refused")
	registry := NewRegistryService(source, nil, nil, zap.NewNop())

	_, err := registry.Grades(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRemote.Code, errorCode(err))
}

func TestRegistryServiceReloadsExpiredSnapshot(t *testing.T) {
	source := newSchoolSource()
	registry := NewRegistryService(source, nil, nil, zap.NewNop())
	registry.SetSnapshotTTL(time.Minute)
	now := time.Date(2024, 1, 8, 7, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return now }

	_, err := registry.Teachers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.loads)

	now = now.Add(30 * time.Second)
	_, err = registry.Teachers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.loads)

	source.teachers = append(source.teachers, models.Teacher{ID: "wanjiru", Name: "Wanjiru", GradeIDs: pq.StringArray{"g1"}})
	now = now.Add(time.Minute)
	teachers, err := registry.Teachers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.loads)
	assert.Len(t, teachers, 5)
}

func TestRegistryServiceIgnoresExpiredCachedSnapshot(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Hour, zap.NewNop(), true)
	source := newSchoolSource()
	now := time.Date(2024, 1, 8, 7, 0, 0, 0, time.UTC)

	first := NewRegistryService(source, cache, nil, zap.NewNop())
	first.now = func() time.Time { return now }
	_, err := first.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.loads)

	second := NewRegistryService(source, cache, nil, zap.NewNop())
	second.SetSnapshotTTL(time.Minute)
	second.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = second.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.loads)
}
