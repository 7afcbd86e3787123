package main

import (
	"context"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type registrySource interface {
	ListLevels(ctx context.Context) ([]models.Level, error)
	ListGrades(ctx context.Context) ([]models.Grade, error)
	ListStreams(ctx context.Context) ([]models.Stream, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
}

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

type weekTemplateStore interface {
	CreateWeekTemplate(ctx context.Context, template models.WeekTemplate) (*models.WeekTemplate, error)
}

type schoolStore interface {
	CreateTerm(ctx context.Context, req dto.CreateTermRequest) (*models.Term, error)
	ConfigureLevels(ctx context.Context, req dto.ConfigureLevelsRequest) error
}

// stores groups the persistence ports served by the selected driver.
type stores struct {
	registry  registrySource
	lessons   lessonStore
	slots     timeSlotStore
	templates weekTemplateStore
	school    schoolStore
	checks    map[string]handler.ReadinessCheck
	close     func()
}
