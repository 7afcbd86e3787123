package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestMetricsServiceExposesTimetableCounters(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodPost, "/api/v1/timetable/entries", http.StatusCreated, 20*time.Millisecond)
	metrics.RecordLessonWrite("create", nil)
	metrics.RecordLessonWrite("create", errors.New("boom"))
	metrics.RecordConflict(models.ConflictTeacherBusy)
	metrics.ObserveBatch(models.BatchResult{Kind: BatchKindBulk, State: models.BatchCompleted, Succeeded: 3}, time.Second)
	metrics.RecordCacheOperation(true, time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `timetable_lesson_writes_total{operation="create",result="error"} 1`)
	assert.Contains(t, body, `timetable_conflicts_total{reason="TEACHER_BUSY"} 1`)
	assert.Contains(t, body, `timetable_batch_entries_total{kind="bulk",outcome="succeeded"} 3`)
	assert.Contains(t, body, `cache_lookups_total{result="hit"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.RecordConflict(models.ConflictGradeBusy)
	metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
