package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplenze/supplenze-api/internal/service"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
	"github.com/supplenze/supplenze-api/pkg/response"
)

// AbsenceHandler exposes absence declaration and resolution endpoints.
type AbsenceHandler struct {
	service *service.AbsenceService
}

// NewAbsenceHandler creates a new handler.
func NewAbsenceHandler(svc *service.AbsenceService) *AbsenceHandler {
	return &AbsenceHandler{service: svc}
}

type declareAbsencePayload struct {
	TeacherID string `json:"teacher_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	BeginTime string `json:"begin_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// Declare godoc
// @Summary Declare a teacher absent
// @Description Create one absence per lesson the teacher holds in the slot range on the date
// @Tags Absences
// @Accept json
// @Produce json
// @Param payload body declareAbsencePayload true "Absence declaration"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /absences [post]
func (h *AbsenceHandler) Declare(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload declareAbsencePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid absence payload"))
		return
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	absences, err := h.service.Declare(c.Request.Context(), claims.UserID, service.DeclareAbsenceRequest{
		TeacherID: payload.TeacherID,
		Date:      date,
		BeginTime: payload.BeginTime,
		EndTime:   payload.EndTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, absences)
}

// ListByDate godoc
// @Summary Daily absence dashboard
// @Description Absences of the active import for one date, grouped by absent teacher
// @Tags Absences
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /absences [get]
func (h *AbsenceHandler) ListByDate(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	days, err := h.service.ListByDate(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, days, nil)
}

// UpdateStatus godoc
// @Summary Resolve an absence
// @Description Apply a resolution status; substitute reference is required for SUBSTITUTE_FOUND
// @Tags Absences
// @Accept json
// @Produce json
// @Param id path string true "Absence ID"
// @Param payload body service.UpdateAbsenceRequest true "Resolution"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /absences/{id} [patch]
func (h *AbsenceHandler) UpdateStatus(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), claims.UserID, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Delete godoc
// @Summary Delete an absence
// @Tags Absences
// @Produce json
// @Param id path string true "Absence ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /absences/{id} [delete]
func (h *AbsenceHandler) Delete(c *gin.Context) {
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
