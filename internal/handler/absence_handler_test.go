package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/supplenze/supplenze-api/internal/models"
	"github.com/supplenze/supplenze-api/internal/service"
)

type fakeAbsenceRepo struct {
	lessonIDs  []string
	rows       []models.AbsenceRow
	updated    int64
	deleted    int64
	lastStatus models.AbsenceStatus
}

func (f *fakeAbsenceRepo) FindLessonIDsForSlot(ctx context.Context, userID, teacherID string, day int, begin, end string) ([]string, error) {
	return f.lessonIDs, nil
}

func (f *fakeAbsenceRepo) Create(ctx context.Context, absence *models.Absence) error {
	if absence.ID == "" {
		absence.ID = "abs-1"
	}
	return nil
}

func (f *fakeAbsenceRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]models.AbsenceRow, error) {
	return f.rows, nil
}

func (f *fakeAbsenceRepo) UpdateStatus(ctx context.Context, id, userID string, status models.AbsenceStatus, substituteAvailabilityID *string) (int64, error) {
	f.lastStatus = status
	return f.updated, nil
}

func (f *fakeAbsenceRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	return f.deleted, nil
}

func newAbsenceHandlerTest(repo *fakeAbsenceRepo) *AbsenceHandler {
	svc := service.NewAbsenceService(repo, nil, nil, nil)
	return NewAbsenceHandler(svc)
}

func TestAbsenceHandlerDeclare(t *testing.T) {
	repo := &fakeAbsenceRepo{lessonIDs: []string{"les-1"}}
	handler := newAbsenceHandlerTest(repo)

	body := `{"teacher_id":"tea-1","date":"2026-09-07","begin_time":"08:00","end_time":"10:00"}`
	c, rec := authedContext(t, httptest.NewRequest(http.MethodPost, "/absences", strings.NewReader(body)))
	handler.Declare(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNCOVERED")
}

func TestAbsenceHandlerDeclareBadDate(t *testing.T) {
	handler := newAbsenceHandlerTest(&fakeAbsenceRepo{})

	body := `{"teacher_id":"tea-1","date":"07/09/2026","begin_time":"08:00","end_time":"10:00"}`
	c, rec := authedContext(t, httptest.NewRequest(http.MethodPost, "/absences", strings.NewReader(body)))
	handler.Declare(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAbsenceHandlerListByDate(t *testing.T) {
	repo := &fakeAbsenceRepo{rows: []models.AbsenceRow{
		{ID: "abs-1", AbsentTeacherID: "tea-1", AbsentTeacher: "SCIALPI MARIO", TimeOfDay: "08:00", Status: models.StatusUncovered},
	}}
	handler := newAbsenceHandlerTest(repo)

	c, rec := authedContext(t, httptest.NewRequest(http.MethodGet, "/absences?date=2026-09-07", nil))
	handler.ListByDate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SCIALPI MARIO")
}

func TestAbsenceHandlerUpdateStatus(t *testing.T) {
	repo := &fakeAbsenceRepo{updated: 1}
	handler := newAbsenceHandlerTest(repo)

	body := `{"status":"CLASS_DELAYED"}`
	c, rec := authedContext(t, httptest.NewRequest(http.MethodPatch, "/absences/abs-1", strings.NewReader(body)))
	c.Params = gin.Params{{Key: "id", Value: "abs-1"}}
	handler.UpdateStatus(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.StatusClassDelayed, repo.lastStatus)
}

func TestAbsenceHandlerUpdateStatusRejectsDanglingSubstitute(t *testing.T) {
	handler := newAbsenceHandlerTest(&fakeAbsenceRepo{updated: 1})

	body := `{"status":"CLASS_DELAYED","substitute_availability_id":"av-1"}`
	c, rec := authedContext(t, httptest.NewRequest(http.MethodPatch, "/absences/abs-1", strings.NewReader(body)))
	c.Params = gin.Params{{Key: "id", Value: "abs-1"}}
	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAbsenceHandlerDeleteNotFound(t *testing.T) {
	handler := newAbsenceHandlerTest(&fakeAbsenceRepo{deleted: 0})

	c, rec := authedContext(t, httptest.NewRequest(http.MethodDelete, "/absences/missing", nil))
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Delete(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
