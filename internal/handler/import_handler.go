package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplenze/supplenze-api/internal/models"
	"github.com/supplenze/supplenze-api/internal/service"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
	"github.com/supplenze/supplenze-api/pkg/response"
)

// ImportHandler exposes timetable import endpoints.
type ImportHandler struct {
	service *service.ImportService
}

// NewImportHandler creates a new handler.
func NewImportHandler(svc *service.ImportService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// Upload godoc
// @Summary Import a timetable document
// @Description Ingest a raw timetable XML export. Mode dry_run validates the full write path and rolls back; write commits.
// @Tags Imports
// @Accept application/xml
// @Produce json
// @Param mode query string false "dry_run or write" default(dry_run)
// @Param file_name query string true "Original file name"
// @Param begin_ts query string true "Validity window start (RFC3339)"
// @Param end_ts query string true "Validity window end (RFC3339)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /imports [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	meta := models.ImportMeta{
		FileName: c.Query("file_name"),
		Mode:     models.ImportMode(c.DefaultQuery("mode", string(models.ImportModeDryRun))),
	}
	var err error
	if meta.BeginTS, err = parseTimestamp(c.Query("begin_ts")); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "begin_ts must be RFC3339"))
		return
	}
	if meta.EndTS, err = parseTimestamp(c.Query("end_ts")); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end_ts must be RFC3339"))
		return
	}

	payload, err := c.GetRawData()
	if err != nil || len(payload) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "request body must contain the timetable document"))
		return
	}

	result, err := h.service.ImportFile(c.Request.Context(), claims.UserID, meta, payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List imports
// @Description List the caller's import batches, newest first
// @Tags Imports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /imports [get]
func (h *ImportHandler) List(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	imports, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, imports, nil)
}

// UpdateWindow godoc
// @Summary Patch an import's validity window
// @Tags Imports
// @Accept json
// @Produce json
// @Param id path string true "Import ID"
// @Param payload body service.UpdateWindowRequest true "New window bounds"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /imports/{id} [patch]
func (h *ImportHandler) UpdateWindow(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid window payload"))
		return
	}

	if err := h.service.UpdateWindow(c.Request.Context(), claims.UserID, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete godoc
// @Summary Delete an import
// @Description Remove an import batch and every entity scoped to it
// @Tags Imports
// @Produce json
// @Param id path string true "Import ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /imports/{id} [delete]
func (h *ImportHandler) Delete(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ArchiveLink godoc
// @Summary Issue a signed archive download link
// @Description Signed, expiring token for the import's archived XML document
// @Tags Imports
// @Produce json
// @Param id path string true "Import ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /imports/{id}/archive-link [get]
func (h *ImportHandler) ArchiveLink(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	link, err := h.service.SignArchiveLink(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, link, nil)
}

// DownloadArchive godoc
// @Summary Download an archived import document
// @Description Serve the original XML referenced by a signed token
// @Tags Imports
// @Produce application/xml
// @Param token path string true "Signed archive token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /archives/{token} [get]
func (h *ImportHandler) DownloadArchive(c *gin.Context) {
	file, err := h.service.OpenArchive(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", "application/xml")
	c.File(file.Name())
}

func parseTimestamp(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}
