package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supplenze/supplenze-api/internal/models"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
)

type mockAbsenceRepo struct {
	lessonIDs    []string
	slotDay      int
	slotBegin    string
	slotEnd      string
	created      []models.Absence
	listRows     []models.AbsenceRow
	updated      int64
	lastStatus   models.AbsenceStatus
	lastSubstRef *string
	deleted      int64
}

func (m *mockAbsenceRepo) FindLessonIDsForSlot(ctx context.Context, userID, teacherID string, day int, begin, end string) ([]string, error) {
	m.slotDay = day
	m.slotBegin = begin
	m.slotEnd = end
	return m.lessonIDs, nil
}

func (m *mockAbsenceRepo) Create(ctx context.Context, absence *models.Absence) error {
	if absence.ID == "" {
		absence.ID = "abs-generated"
	}
	m.created = append(m.created, *absence)
	return nil
}

func (m *mockAbsenceRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]models.AbsenceRow, error) {
	return m.listRows, nil
}

func (m *mockAbsenceRepo) UpdateStatus(ctx context.Context, id, userID string, status models.AbsenceStatus, substituteAvailabilityID *string) (int64, error) {
	m.lastStatus = status
	m.lastSubstRef = substituteAvailabilityID
	return m.updated, nil
}

func (m *mockAbsenceRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	return m.deleted, nil
}

func newAbsenceService(repo *mockAbsenceRepo) *AbsenceService {
	return NewAbsenceService(repo, nil, validator.New(), zap.NewNop())
}

func TestDeclareCreatesOneAbsencePerLesson(t *testing.T) {
	repo := &mockAbsenceRepo{lessonIDs: []string{"les-1", "les-2"}}
	service := newAbsenceService(repo)

	// 2026-09-07 is a Monday.
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	absences, err := service.Declare(context.Background(), "user-1", DeclareAbsenceRequest{
		TeacherID: "tea-1",
		Date:      date,
		BeginTime: "08:00",
		EndTime:   "10:00",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.slotDay)
	assert.Equal(t, "08:00", repo.slotBegin)
	assert.Equal(t, "10:00", repo.slotEnd)
	require.Len(t, absences, 2)
	for _, absence := range absences {
		assert.Equal(t, models.StatusUncovered, absence.Status)
		assert.Nil(t, absence.SubstituteAvailabilityID)
		assert.True(t, absence.AbsenceDate.Equal(date))
	}
}

func TestDeclareSundayMapsToISODaySeven(t *testing.T) {
	repo := &mockAbsenceRepo{}
	service := newAbsenceService(repo)

	date := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	absences, err := service.Declare(context.Background(), "user-1", DeclareAbsenceRequest{
		TeacherID: "tea-1",
		Date:      date,
		BeginTime: "08:00",
		EndTime:   "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, repo.slotDay)
	assert.Empty(t, absences)
}

func TestDeclareRejectsInvertedRange(t *testing.T) {
	service := newAbsenceService(&mockAbsenceRepo{})

	_, err := service.Declare(context.Background(), "user-1", DeclareAbsenceRequest{
		TeacherID: "tea-1",
		Date:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		BeginTime: "10:00",
		EndTime:   "08:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListByDateGroupsByTeacher(t *testing.T) {
	room := "07-TW"
	sub := "VERDI PAOLA"
	repo := &mockAbsenceRepo{listRows: []models.AbsenceRow{
		{ID: "abs-1", AbsentTeacherID: "tea-1", AbsentTeacher: "BIANCHI LUCA", TimeOfDay: "08:00", Room: &room, Status: models.StatusUncovered},
		{ID: "abs-2", AbsentTeacherID: "tea-1", AbsentTeacher: "BIANCHI LUCA", TimeOfDay: "09:00", Status: models.StatusSubstituteFound, SubstituteTeacher: &sub},
		{ID: "abs-3", AbsentTeacherID: "tea-2", AbsentTeacher: "SCIALPI MARIO", TimeOfDay: "08:00", Status: models.StatusClassCancelled},
	}}
	service := newAbsenceService(repo)

	days, err := service.ListByDate(context.Background(), "user-1", time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "BIANCHI LUCA", days[0].AbsentTeacher)
	require.Len(t, days[0].Classes, 2)
	assert.Equal(t, "08:00", days[0].Classes[0].TimeOfDay)
	assert.Equal(t, &sub, days[0].Classes[1].SubstituteTeacher)
	assert.Equal(t, "SCIALPI MARIO", days[1].AbsentTeacher)
	require.Len(t, days[1].Classes, 1)
}

func TestUpdateStatusRequiresSubstituteForSubstituteFound(t *testing.T) {
	repo := &mockAbsenceRepo{updated: 1}
	service := newAbsenceService(repo)

	err := service.UpdateStatus(context.Background(), "user-1", "abs-1", UpdateAbsenceRequest{
		Status: models.StatusSubstituteFound,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	ref := "av-1"
	err = service.UpdateStatus(context.Background(), "user-1", "abs-1", UpdateAbsenceRequest{
		Status:                   models.StatusSubstituteFound,
		SubstituteAvailabilityID: &ref,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubstituteFound, repo.lastStatus)
	assert.Equal(t, &ref, repo.lastSubstRef)
}

func TestUpdateStatusRejectsSubstituteForOtherStates(t *testing.T) {
	service := newAbsenceService(&mockAbsenceRepo{updated: 1})

	ref := "av-1"
	err := service.UpdateStatus(context.Background(), "user-1", "abs-1", UpdateAbsenceRequest{
		Status:                   models.StatusClassDelayed,
		SubstituteAvailabilityID: &ref,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateStatusUnknownState(t *testing.T) {
	service := newAbsenceService(&mockAbsenceRepo{updated: 1})

	err := service.UpdateStatus(context.Background(), "user-1", "abs-1", UpdateAbsenceRequest{Status: "ON_STRIKE"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateStatusNotFoundOutsideScope(t *testing.T) {
	service := newAbsenceService(&mockAbsenceRepo{updated: 0})

	err := service.UpdateStatus(context.Background(), "intruder", "abs-1", UpdateAbsenceRequest{Status: models.StatusClassCancelled})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeleteAbsence(t *testing.T) {
	service := newAbsenceService(&mockAbsenceRepo{deleted: 1})
	require.NoError(t, service.Delete(context.Background(), "user-1", "abs-1"))

	service = newAbsenceService(&mockAbsenceRepo{deleted: 0})
	err := service.Delete(context.Background(), "user-1", "abs-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
