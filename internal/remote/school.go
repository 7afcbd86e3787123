package remote

import (
	"context"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type termPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AcademicYear string    `json:"academicYear"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateTerm registers an academic term through the onboarding endpoint.
func (c *Client) CreateTerm(ctx context.Context, req dto.CreateTermRequest) (*models.Term, error) {
	body := termPayload{
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsActive:     req.IsActive,
	}
	var resp struct {
		Term *termPayload `json:"term"`
	}
	if err := c.rest(ctx, "/api/school/create-term", body, &resp); err != nil {
		return nil, err
	}
	created := body
	if resp.Term != nil {
		created = *resp.Term
	}
	return &models.Term{
		ID:           created.ID,
		Name:         created.Name,
		AcademicYear: created.AcademicYear,
		StartDate:    created.StartDate,
		EndDate:      created.EndDate,
		IsActive:     created.IsActive,
		CreatedAt:    created.CreatedAt,
	}, nil
}

// ConfigureLevels sends the curriculum layout through the onboarding endpoint.
func (c *Client) ConfigureLevels(ctx context.Context, req dto.ConfigureLevelsRequest) error {
	type grade struct {
		Name    string   `json:"name"`
		Streams []string `json:"streams"`
	}
	type subject struct {
		Name  string  `json:"name"`
		Color *string `json:"color,omitempty"`
	}
	type level struct {
		Name     string    `json:"name"`
		Grades   []grade   `json:"grades"`
		Subjects []subject `json:"subjects"`
	}
	body := struct {
		CurriculumID string  `json:"curriculumId"`
		Levels       []level `json:"levels"`
	}{CurriculumID: req.CurriculumID}

	for _, l := range req.Levels {
		out := level{Name: l.Name, Grades: []grade{}, Subjects: []subject{}}
		for _, g := range l.Grades {
			out.Grades = append(out.Grades, grade{Name: g.Name, Streams: append([]string{}, g.Streams...)})
		}
		for _, s := range l.Subjects {
			out.Subjects = append(out.Subjects, subject{Name: s.Name, Color: s.Color})
		}
		body.Levels = append(body.Levels, out)
	}
	return c.rest(ctx, "/api/school/configure-levels", body, nil)
}
