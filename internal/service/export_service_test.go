package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supplenze/supplenze-api/internal/models"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
)

type mockPlanRepo struct {
	rows []models.AbsenceRow
}

func (m *mockPlanRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]models.AbsenceRow, error) {
	return m.rows, nil
}

func TestDailyPlanCSV(t *testing.T) {
	room := "07-TW"
	group := "5^A-IA"
	sub := "ROSSI ANNA"
	repo := &mockPlanRepo{rows: []models.AbsenceRow{
		{ID: "abs-1", AbsentTeacher: "SCIALPI MARIO", TimeOfDay: "08:00", Room: &room, Group: &group, Status: models.StatusSubstituteFound, SubstituteTeacher: &sub},
		{ID: "abs-2", AbsentTeacher: "SCIALPI MARIO", TimeOfDay: "09:00", Status: models.StatusClassCancelled},
	}}
	service := NewExportService(repo, nil, nil, zap.NewNop())

	file, err := service.DailyPlan(context.Background(), "user-1", time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), PlanFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "substitution-plan-2026-09-07.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)

	content := string(file.Data)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "ROSSI ANNA")
	assert.Contains(t, lines[2], "class cancelled")
}

func TestDailyPlanPDF(t *testing.T) {
	repo := &mockPlanRepo{rows: []models.AbsenceRow{
		{ID: "abs-1", AbsentTeacher: "SCIALPI MARIO", TimeOfDay: "08:00", Status: models.StatusUncovered},
	}}
	service := NewExportService(repo, nil, nil, zap.NewNop())

	file, err := service.DailyPlan(context.Background(), "user-1", time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), PlanFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "substitution-plan-2026-09-07.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestDailyPlanUnknownFormat(t *testing.T) {
	service := NewExportService(&mockPlanRepo{}, nil, nil, zap.NewNop())

	_, err := service.DailyPlan(context.Background(), "user-1", time.Now(), PlanFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
