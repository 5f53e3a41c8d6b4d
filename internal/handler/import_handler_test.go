package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/supplenze/supplenze-api/internal/middleware"
	"github.com/supplenze/supplenze-api/internal/models"
	"github.com/supplenze/supplenze-api/internal/repository"
	"github.com/supplenze/supplenze-api/internal/service"
)

type fakeImportRepo struct {
	lastBatch repository.ImportBatch
	imports   []models.Import
	updated   int64
	deleted   int64
}

func (f *fakeImportRepo) RunImport(ctx context.Context, userID string, batch repository.ImportBatch) (string, error) {
	f.lastBatch = batch
	return "imp-1", nil
}

func (f *fakeImportRepo) List(ctx context.Context, userID string) ([]models.Import, error) {
	return f.imports, nil
}

func (f *fakeImportRepo) FindByID(ctx context.Context, id, userID string) (*models.Import, error) {
	for i := range f.imports {
		if f.imports[i].ID == id {
			return &f.imports[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeImportRepo) UpdateWindow(ctx context.Context, id, userID string, begin, end *time.Time) (int64, error) {
	return f.updated, nil
}

func (f *fakeImportRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	return f.deleted, nil
}

const uploadXML = `<SCHEDULE><LESSON>
	<SUBJECT>INFORMATICA</SUBJECT>
	<TEACHER>SCIALPI MARIO</TEACHER>
	<DAY>LUN</DAY>
	<TIME>8:00</TIME>
</LESSON></SCHEDULE>`

func newImportHandlerTest(repo *fakeImportRepo) *ImportHandler {
	svc := service.NewImportService(repo, nil, nil, nil, nil, nil, nil, nil)
	return NewImportHandler(svc)
}

func authedContext(t *testing.T, req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Email: "admin@example.com"})
	return c, rec
}

func TestImportHandlerUpload(t *testing.T) {
	repo := &fakeImportRepo{}
	handler := newImportHandlerTest(repo)

	req := httptest.NewRequest(http.MethodPost,
		"/imports?mode=write&file_name=orario.xml&begin_ts=2026-09-01T00:00:00Z&end_ts=2026-12-31T00:00:00Z",
		strings.NewReader(uploadXML))
	c, rec := authedContext(t, req)

	handler.Upload(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "imp-1")
	assert.Equal(t, models.ImportModeWrite, repo.lastBatch.Meta.Mode)
}

func TestImportHandlerUploadDefaultsToDryRun(t *testing.T) {
	repo := &fakeImportRepo{}
	handler := newImportHandlerTest(repo)

	req := httptest.NewRequest(http.MethodPost,
		"/imports?file_name=orario.xml&begin_ts=2026-09-01T00:00:00Z&end_ts=2026-12-31T00:00:00Z",
		strings.NewReader(uploadXML))
	c, rec := authedContext(t, req)

	handler.Upload(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ImportModeDryRun, repo.lastBatch.Meta.Mode)
}

func TestImportHandlerUploadRejectsBadWindow(t *testing.T) {
	handler := newImportHandlerTest(&fakeImportRepo{})

	req := httptest.NewRequest(http.MethodPost,
		"/imports?file_name=orario.xml&begin_ts=not-a-date&end_ts=2026-12-31T00:00:00Z",
		strings.NewReader(uploadXML))
	c, rec := authedContext(t, req)

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportHandlerUploadRequiresBody(t *testing.T) {
	handler := newImportHandlerTest(&fakeImportRepo{})

	req := httptest.NewRequest(http.MethodPost,
		"/imports?file_name=orario.xml&begin_ts=2026-09-01T00:00:00Z&end_ts=2026-12-31T00:00:00Z", nil)
	c, rec := authedContext(t, req)

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportHandlerUploadUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newImportHandlerTest(&fakeImportRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(uploadXML))

	handler.Upload(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestImportHandlerList(t *testing.T) {
	repo := &fakeImportRepo{imports: []models.Import{{ID: "imp-1", FileName: "orario.xml"}}}
	handler := newImportHandlerTest(repo)

	c, rec := authedContext(t, httptest.NewRequest(http.MethodGet, "/imports", nil))
	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "orario.xml")
}

func TestImportHandlerDeleteNotFound(t *testing.T) {
	handler := newImportHandlerTest(&fakeImportRepo{deleted: 0})

	c, rec := authedContext(t, httptest.NewRequest(http.MethodDelete, "/imports/missing", nil))
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Delete(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
