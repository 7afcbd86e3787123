package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/gradelevel"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type gridSource interface {
	Grid(ctx context.Context, termID, gradeID string) (*dto.TimetableGrid, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered timetable document.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a grade's weekly timetable as a downloadable document.
type ExportService struct {
	grids  gridSource
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(grids gridSource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{grids: grids, csv: csv, pdf: pdf, logger: logger}
}

// Export renders the timetable of a grade for a term.
func (s *ExportService) Export(ctx context.Context, termID, gradeID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	grid, err := s.grids.Grid(ctx, termID, gradeID)
	if err != nil {
		return nil, err
	}
	dataset := BuildTimetableDataset(grid)
	filename := fmt.Sprintf("timetable-%s-%s.%s", strings.ToLower(gradelevel.Abbreviate(grid.GradeName)), termID, format)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case ExportFormatPDF:
		data, err = s.pdf.Render(dataset, fmt.Sprintf("%s timetable", grid.GradeName))
		contentType = "application/pdf"
	default:
		data, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		s.logger.Error("failed to render timetable export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	return &ExportFile{Filename: filename, ContentType: contentType, Data: data}, nil
}

// BuildTimetableDataset lays the grid out with periods as rows and weekdays as columns.
func BuildTimetableDataset(grid *dto.TimetableGrid) export.Dataset {
	headers := []string{"Period"}
	for _, day := range grid.Days {
		headers = append(headers, day.Name)
	}
	rows := make([]map[string]string, 0, len(grid.TimeSlots))
	for i, slot := range grid.TimeSlots {
		row := map[string]string{"Period": fmt.Sprintf("%d (%s)", slot.Period, slot.StartTime)}
		for _, day := range grid.Days {
			if i >= len(day.Periods) {
				continue
			}
			lessons := day.Periods[i].Lessons
			labels := make([]string, 0, len(lessons))
			for _, lesson := range lessons {
				labels = append(labels, lessonLabel(lesson))
			}
			row[day.Name] = strings.Join(labels, "\n")
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func lessonLabel(lesson dto.LessonDisplay) string {
	label := fmt.Sprintf("%s - %s", nameOr(lesson.SubjectName, lesson.SubjectID), nameOr(lesson.TeacherName, lesson.TeacherID))
	if lesson.RoomNumber != nil && *lesson.RoomNumber != "" {
		label += fmt.Sprintf(" (%s)", *lesson.RoomNumber)
	}
	if lesson.StreamName != "" {
		label = lesson.StreamName + ": " + label
	}
	return label
}
