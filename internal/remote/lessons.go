package remote

import (
	"context"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

const entryFields = `id termId gradeId streamId subjectId teacherId timeSlotId dayOfWeek roomNumber createdAt updatedAt`

const (
	timetableEntriesQuery = `query TimetableEntries($termId: ID, $gradeId: ID, $teacherId: ID, $dayOfWeek: Int, $timeSlotId: ID) {
  timetableEntries(termId: $termId, gradeId: $gradeId, teacherId: $teacherId, dayOfWeek: $dayOfWeek, timeSlotId: $timeSlotId) { ` + entryFields + ` }
}`
	timetableEntryQuery = `query TimetableEntry($id: ID!) { timetableEntry(id: $id) { ` + entryFields + ` } }`
	createEntryMutation = `mutation CreateTimetableEntry($input: TimetableEntryInput!) {
  createTimetableEntry(input: $input) { ` + entryFields + ` }
}`
	updateEntryMutation = `mutation UpdateTimetableEntry($id: ID!, $input: TimetableEntryUpdateInput!) {
  updateTimetableEntry(id: $id, input: $input) { ` + entryFields + ` }
}`
	deleteEntryMutation = `mutation DeleteTimetableEntry($id: ID!) { deleteTimetableEntry(id: $id) }`
	timeSlotsQuery      = `query TimeSlots($termId: ID!) { timeSlots(termId: $termId) { id termId period startTime durationMinutes } }`
	createWeekMutation  = `mutation CreateWeekTemplate($input: WeekTemplateInput!) {
  createWeekTemplate(input: $input) {
    id createdAt
    dayTemplates { dayOfWeek timeSlots { id termId period startTime durationMinutes } }
  }
}`
)

type entryNode struct {
	ID         string    `json:"id"`
	TermID     string    `json:"termId"`
	GradeID    string    `json:"gradeId"`
	StreamID   *string   `json:"streamId"`
	SubjectID  string    `json:"subjectId"`
	TeacherID  string    `json:"teacherId"`
	TimeSlotID string    `json:"timeSlotId"`
	DayOfWeek  int       `json:"dayOfWeek"`
	RoomNumber *string   `json:"roomNumber"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (n entryNode) model() models.LessonEntry {
	return models.LessonEntry{
		ID:         n.ID,
		TermID:     n.TermID,
		GradeID:    n.GradeID,
		StreamID:   n.StreamID,
		SubjectID:  n.SubjectID,
		TeacherID:  n.TeacherID,
		TimeSlotID: n.TimeSlotID,
		DayOfWeek:  n.DayOfWeek,
		RoomNumber: n.RoomNumber,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

type timeSlotNode struct {
	ID              string `json:"id"`
	TermID          string `json:"termId"`
	Period          int    `json:"period"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

func (n timeSlotNode) model() models.TimeSlot {
	return models.TimeSlot{ID: n.ID, TermID: n.TermID, Period: n.Period, StartTime: n.StartTime, DurationMinutes: n.DurationMinutes}
}

// ListLessons queries entries; empty filter fields are omitted.
func (c *Client) ListLessons(ctx context.Context, filter models.LessonEntryFilter) ([]models.LessonEntry, error) {
	variables := map[string]interface{}{}
	if filter.TermID != "" {
		variables["termId"] = filter.TermID
	}
	if filter.GradeID != "" {
		variables["gradeId"] = filter.GradeID
	}
	if filter.TeacherID != "" {
		variables["teacherId"] = filter.TeacherID
	}
	if filter.DayOfWeek != 0 {
		variables["dayOfWeek"] = filter.DayOfWeek
	}
	if filter.TimeSlotID != "" {
		variables["timeSlotId"] = filter.TimeSlotID
	}

	var data struct {
		Entries []entryNode `json:"timetableEntries"`
	}
	if err := c.graphql(ctx, "timetableEntries", timetableEntriesQuery, variables, &data); err != nil {
		return nil, err
	}
	entries := make([]models.LessonEntry, 0, len(data.Entries))
	for _, n := range data.Entries {
		entries = append(entries, n.model())
	}
	return entries, nil
}

// FindLesson loads one entry. A null result is NOT_FOUND.
func (c *Client) FindLesson(ctx context.Context, id string) (*models.LessonEntry, error) {
	var data struct {
		Entry *entryNode `json:"timetableEntry"`
	}
	if err := c.graphql(ctx, "timetableEntry", timetableEntryQuery, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, asNotFound(err)
	}
	if data.Entry == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	entry := data.Entry.model()
	return &entry, nil
}

// CreateLesson submits a new entry. The backend assigns the id, so placeholder ids are never sent.
func (c *Client) CreateLesson(ctx context.Context, entry models.LessonEntry) (*models.LessonEntry, error) {
	input := map[string]interface{}{
		"termId":     entry.TermID,
		"gradeId":    entry.GradeID,
		"streamId":   entry.StreamID,
		"subjectId":  entry.SubjectID,
		"teacherId":  entry.TeacherID,
		"timeSlotId": entry.TimeSlotID,
		"dayOfWeek":  entry.DayOfWeek,
		"roomNumber": entry.RoomNumber,
	}
	var data struct {
		Entry *entryNode `json:"createTimetableEntry"`
	}
	if err := c.graphql(ctx, "createTimetableEntry", createEntryMutation, map[string]interface{}{"input": input}, &data); err != nil {
		return nil, err
	}
	if data.Entry == nil {
		return nil, appErrors.Clone(appErrors.ErrRemote, "createTimetableEntry returned no entry")
	}
	created := data.Entry.model()
	return &created, nil
}

// UpdateLesson changes subject, teacher and room of an entry.
func (c *Client) UpdateLesson(ctx context.Context, entry models.LessonEntry) (*models.LessonEntry, error) {
	variables := map[string]interface{}{
		"id": entry.ID,
		"input": map[string]interface{}{
			"subjectId":  entry.SubjectID,
			"teacherId":  entry.TeacherID,
			"roomNumber": entry.RoomNumber,
		},
	}
	var data struct {
		Entry *entryNode `json:"updateTimetableEntry"`
	}
	if err := c.graphql(ctx, "updateTimetableEntry", updateEntryMutation, variables, &data); err != nil {
		return nil, asNotFound(err)
	}
	if data.Entry == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	updated := data.Entry.model()
	return &updated, nil
}

// DeleteLesson removes an entry.
func (c *Client) DeleteLesson(ctx context.Context, id string) error {
	var data struct {
		Deleted *bool `json:"deleteTimetableEntry"`
	}
	if err := c.graphql(ctx, "deleteTimetableEntry", deleteEntryMutation, map[string]interface{}{"id": id}, &data); err != nil {
		return asNotFound(err)
	}
	if data.Deleted != nil && !*data.Deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	return nil
}

// ListTimeSlots loads the periods of a term.
func (c *Client) ListTimeSlots(ctx context.Context, termID string) ([]models.TimeSlot, error) {
	var data struct {
		TimeSlots []timeSlotNode `json:"timeSlots"`
	}
	if err := c.graphql(ctx, "timeSlots", timeSlotsQuery, map[string]interface{}{"termId": termID}, &data); err != nil {
		return nil, err
	}
	slots := make([]models.TimeSlot, 0, len(data.TimeSlots))
	for _, n := range data.TimeSlots {
		slots = append(slots, n.model())
	}
	return slots, nil
}

// CreateWeekTemplate asks the backend to create the template and its time slots.
func (c *Client) CreateWeekTemplate(ctx context.Context, template models.WeekTemplate) (*models.WeekTemplate, error) {
	input := map[string]interface{}{
		"termId":                template.TermID,
		"name":                  template.Name,
		"startTime":             template.StartTime,
		"periodCount":           template.PeriodCount,
		"periodDurationMinutes": template.PeriodDurationMinutes,
		"daysPerWeek":           template.DaysPerWeek,
		"gradeIds":              template.GradeIDs,
	}
	var data struct {
		Template *struct {
			ID           string    `json:"id"`
			CreatedAt    time.Time `json:"createdAt"`
			DayTemplates []struct {
				DayOfWeek int            `json:"dayOfWeek"`
				TimeSlots []timeSlotNode `json:"timeSlots"`
			} `json:"dayTemplates"`
		} `json:"createWeekTemplate"`
	}
	if err := c.graphql(ctx, "createWeekTemplate", createWeekMutation, map[string]interface{}{"input": input}, &data); err != nil {
		return nil, err
	}
	if data.Template == nil {
		return nil, appErrors.Clone(appErrors.ErrRemote, "createWeekTemplate returned no template")
	}

	template.ID = data.Template.ID
	template.CreatedAt = data.Template.CreatedAt
	if len(data.Template.DayTemplates) > 0 {
		days := make([]models.DayTemplate, 0, len(data.Template.DayTemplates))
		for _, day := range data.Template.DayTemplates {
			dt := models.DayTemplate{DayOfWeek: day.DayOfWeek}
			for _, n := range day.TimeSlots {
				dt.TimeSlots = append(dt.TimeSlots, n.model())
			}
			days = append(days, dt)
		}
		template.DayTemplates = days
	}
	return &template, nil
}
