package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/tenant"
)

type recordedRequest struct {
	Path      string
	Tenant    string
	Auth      string
	Query     string
	Variables map[string]interface{}
	Body      map[string]interface{}
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(w http.ResponseWriter, req recordedRequest)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	rec := recordedRequest{
		Path:   r.URL.Path,
		Tenant: r.Header.Get(tenant.HeaderKey),
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	}
	if q, ok := body["query"].(string); ok {
		rec.Query = q
	}
	if v, ok := body["variables"].(map[string]interface{}); ok {
		rec.Variables = v
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	f.respond(w, rec)
}

func (f *fakeBackend) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type recordingObserver struct {
	paths    []string
	statuses []int
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	r.paths = append(r.paths, path)
	r.statuses = append(r.statuses, status)
}

func newBackend(t *testing.T, respond func(w http.ResponseWriter, req recordedRequest)) (*Client, *fakeBackend, *recordingObserver) {
	t.Helper()
	backend := &fakeBackend{respond: respond}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	observer := &recordingObserver{}
	client := NewClient(Config{
		GraphQLURL:  server.URL + "/graphql",
		RESTBaseURL: server.URL + "/",
		APIToken:    "secret-token",
		Timeout:     2 * time.Second,
	}, observer, nil)
	return client, backend, observer
}

func writeJSON(w http.ResponseWriter, status int, payload string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(payload))
}

func TestListLessonsForwardsTenantAndFilter(t *testing.T) {
	client, backend, observer := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
		writeJSON(w, http.StatusOK, `{"data":{"timetableEntries":[{"id":"l1","termId":"term-1","gradeId":"g7","subjectId":"math","teacherId":"jane","timeSlotId":"slot-1","dayOfWeek":1,"roomNumber":"R1"}]}}`)
	})

	ctx := tenant.WithTenant(context.Background(), "greenfield")
	entries, err := client.ListLessons(ctx, models.LessonEntryFilter{TermID: "term-1", DayOfWeek: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "jane", entries[0].TeacherID)
	require.NotNil(t, entries[0].RoomNumber)
	assert.Equal(t, "R1", *entries[0].RoomNumber)

	req := backend.last()
	assert.Equal(t, "/graphql", req.Path)
	assert.Equal(t, "greenfield", req.Tenant)
	assert.Equal(t, "Bearer secret-token", req.Auth)
	assert.Contains(t, req.Query, "timetableEntries(")
	assert.Equal(t, "term-1", req.Variables["termId"])
	assert.EqualValues(t, 1, req.Variables["dayOfWeek"])
	assert.NotContains(t, req.Variables, "gradeId")

	require.Len(t, observer.paths, 1)
	assert.Equal(t, "remote_graphql_timetableEntries", observer.paths[0])
	assert.Equal(t, http.StatusOK, observer.statuses[0])
}

func TestGraphQLErrorCodesMapToTaxonomy(t *testing.T) {
	cases := []struct {
		code string
		want *appErrors.Error
	}{
		{"BAD_USER_INPUT", appErrors.ErrValidation},
		{"VALIDATION_ERROR", appErrors.ErrValidation},
		{"CONFLICT", appErrors.ErrConflict},
		{"TEACHER_BUSY", appErrors.ErrConflict},
		{"GRADE_BUSY", appErrors.ErrConflict},
		{"NOT_FOUND", appErrors.ErrReferential},
		{"INTERNAL_SERVER_ERROR", appErrors.ErrRemote},
		{"", appErrors.ErrRemote},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			client, _, _ := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
				writeJSON(w, http.StatusOK, `{"data":null,"errors":[{"message":"backend says no","extensions":{"code":"`+tc.code+`"}}]}`)
			})
			_, err := client.CreateLesson(context.Background(), models.LessonEntry{TermID: "term-1"})
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.want.Code, appErr.Code)
			assert.Equal(t, "backend says no", appErr.Message)
		})
	}
}

func TestTeacherBusyCarriesReason(t *testing.T) {
	client, _, _ := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
		writeJSON(w, http.StatusOK, `{"errors":[{"message":"Jane is busy","extensions":{"code":"TEACHER_BUSY"}}]}`)
	})
	_, err := client.CreateLesson(context.Background(), models.LessonEntry{TermID: "term-1"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Jane is busy", appErr.Message)

	var conflictErr *models.LessonConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, models.ConflictTeacherBusy, conflictErr.Reason)
	assert.Equal(t, models.ConflictTeacherBusy, conflictErr.Conflict.Reason)

	details, ok := appErr.Details.(models.LessonConflict)
	require.True(t, ok)
	assert.Equal(t, models.ConflictTeacherBusy, details.Reason)
}

func TestCreateLessonOmitsPlaceholderID(t *testing.T) {
	client, backend, _ := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
		writeJSON(w, http.StatusOK, `{"data":{"createTimetableEntry":{"id":"real-1","termId":"term-1","gradeId":"g7","subjectId":"math","teacherId":"jane","timeSlotId":"slot-1","dayOfWeek":2}}}`)
	})
	created, err := client.CreateLesson(context.Background(), models.LessonEntry{
		ID: models.PendingIDPrefix + "x", TermID: "term-1", GradeID: "g7", SubjectID: "math", TeacherID: "jane", TimeSlotID: "slot-1", DayOfWeek: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "real-1", created.ID)

	input, ok := backend.last().Variables["input"].(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, input, "id")
	assert.Equal(t, "jane", input["teacherId"])
}

func TestFindLessonNullIsNotFound(t *testing.T) {
	client, _, _ := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
		writeJSON(w, http.StatusOK, `{"data":{"timetableEntry":null}}`)
	})
	_, err := client.FindLesson(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestDeleteLessonNotFoundCode(t *testing.T) {
	client, _, _ := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
		writeJSON(w, http.StatusOK, `{"errors":[{"message":"no such entry","extensions":{"code":"NOT_FOUND"}}]}`)
	})
	err := client.DeleteLesson(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestHTTPFailureIsRemoteError(t *testing.T) {
	client, _, observer := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
		writeJSON(w, http.StatusBadGateway, `upstream unavailable`)
	})
	_, err := client.ListTimeSlots(context.Background(), "term-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRemote.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "upstream unavailable")
	assert.Equal(t, []int{http.StatusBadGateway}, observer.statuses)
}

func TestUnconfiguredEndpoints(t *testing.T) {
	client := NewClient(Config{}, nil, nil)
	_, err := client.ListLevels(context.Background())
	assert.True(t, appErrors.Is(err, appErrors.ErrRemote))
	err = client.ConfigureLevels(context.Background(), dto.ConfigureLevelsRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrRemote))
}

func TestRegistryQueriesDecode(t *testing.T) {
	client, _, _ := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
		switch {
		case strings.Contains(req.Query, "grades"):
			writeJSON(w, http.StatusOK, `{"data":{"grades":[{"id":"g7","name":"Grade 7","levelId":"up","streamIds":["s7w","s7e"]}]}}`)
		case strings.Contains(req.Query, "teachers"):
			writeJSON(w, http.StatusOK, `{"data":{"teachers":[{"id":"tom","name":"Tom","gradeLevels":["Grade 3"],"gradeIds":[]}]}}`)
		default:
			writeJSON(w, http.StatusOK, `{"data":{}}`)
		}
	})

	grades, err := client.ListGrades(context.Background())
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, []string{"s7w", "s7e"}, []string(grades[0].StreamIDs))

	teachers, err := client.ListTeachers(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, []string{"Grade 3"}, []string(teachers[0].GradeLevels))
	assert.Empty(t, teachers[0].GradeIDs)
}

func TestCreateWeekTemplateUsesReturnedSlots(t *testing.T) {
	client, backend, _ := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
		writeJSON(w, http.StatusOK, `{"data":{"createWeekTemplate":{"id":"tpl-1","dayTemplates":[{"dayOfWeek":1,"timeSlots":[{"id":"slot-a","termId":"term-1","period":1,"startTime":"08:00","durationMinutes":40}]}]}}}`)
	})
	created, err := client.CreateWeekTemplate(context.Background(), models.WeekTemplate{
		TermID: "term-1", Name: "Week", StartTime: "08:00", PeriodCount: 1, PeriodDurationMinutes: 40, DaysPerWeek: 1, GradeIDs: []string{"g7"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", created.ID)
	slot, ok := created.SlotForPeriod(1, 1)
	require.True(t, ok)
	assert.Equal(t, "slot-a", slot.ID)

	input := backend.last().Variables["input"].(map[string]interface{})
	assert.EqualValues(t, 40, input["periodDurationMinutes"])
}

func TestSchoolEndpoints(t *testing.T) {
	client, backend, _ := newBackend(t, func(w http.ResponseWriter, req recordedRequest) {
		switch req.Path {
		case "/api/school/create-term":
			writeJSON(w, http.StatusCreated, `{"term":{"id":"term-9","name":"Term 1","academicYear":"2026","isActive":true}}`)
		case "/api/school/configure-levels":
			writeJSON(w, http.StatusUnprocessableEntity, `{"message":"duplicate grade name","code":"VALIDATION_ERROR"}`)
		default:
			writeJSON(w, http.StatusNotFound, `{}`)
		}
	})

	ctx := tenant.WithTenant(context.Background(), "hillside")
	term, err := client.CreateTerm(ctx, dto.CreateTermRequest{Name: "Term 1", AcademicYear: "2026", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "term-9", term.ID)
	assert.Equal(t, "hillside", backend.last().Tenant)

	err = client.ConfigureLevels(ctx, dto.ConfigureLevelsRequest{
		CurriculumID: "cbc",
		Levels:       []dto.LevelConfig{{Name: "Upper Primary", Grades: []dto.GradeConfig{{Name: "Grade 7"}}}},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "duplicate grade name", appErr.Message)
	assert.Equal(t, "cbc", backend.last().Body["curriculumId"])
}
