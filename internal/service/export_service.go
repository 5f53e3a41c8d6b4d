package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/supplenze/supplenze-api/internal/models"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
	"github.com/supplenze/supplenze-api/pkg/export"
)

// PlanFormat selects the rendering of a daily substitution plan.
type PlanFormat string

const (
	PlanFormatCSV PlanFormat = "csv"
	PlanFormatPDF PlanFormat = "pdf"
)

type planRepository interface {
	ListByDate(ctx context.Context, userID string, date time.Time) ([]models.AbsenceRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// PlanFile is a rendered substitution plan ready for download.
type PlanFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders the daily substitution plan as CSV or PDF.
type ExportService struct {
	repo   planRepository
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(repo planRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{repo: repo, csv: csv, pdf: pdf, logger: logger}
}

// DailyPlan renders the substitution plan for one date: every absence
// of the caller's active import with the chosen cover, one row per
// absent slot.
func (s *ExportService) DailyPlan(ctx context.Context, userID string, date time.Time, format PlanFormat) (*PlanFile, error) {
	rows, err := s.repo.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan rows")
	}

	dataset := planDataset(rows)
	day := date.Format("2006-01-02")

	switch format {
	case PlanFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv plan")
		}
		return &PlanFile{
			FileName:    fmt.Sprintf("substitution-plan-%s.csv", day),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case PlanFormatPDF:
		data, err := s.pdf.Render(dataset, fmt.Sprintf("Substitution plan %s", day))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf plan")
		}
		return &PlanFile{
			FileName:    fmt.Sprintf("substitution-plan-%s.pdf", day),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown plan format %q", format))
	}
}

func planDataset(rows []models.AbsenceRow) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Time", "Absent teacher", "Room", "Group", "Status", "Substitute"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Time":           row.TimeOfDay,
			"Absent teacher": row.AbsentTeacher,
			"Room":           deref(row.Room),
			"Group":          deref(row.Group),
			"Status":         statusLabel(row.Status),
			"Substitute":     deref(row.SubstituteTeacher),
		})
	}
	return dataset
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func statusLabel(status models.AbsenceStatus) string {
	return strings.ReplaceAll(strings.ToLower(string(status)), "_", " ")
}
