package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplenze/supplenze-api/internal/service"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
	"github.com/supplenze/supplenze-api/pkg/response"
)

// TeacherHandler exposes substitute matching and roster endpoints.
type TeacherHandler struct {
	service *service.SubstituteService
}

// NewTeacherHandler creates a new handler.
func NewTeacherHandler(svc *service.SubstituteService) *TeacherHandler {
	return &TeacherHandler{service: svc}
}

// Available godoc
// @Summary Substitute candidates for an absence
// @Description Teachers of the same scope whose availability slot matches the absent lesson's slot
// @Tags Teachers
// @Produce json
// @Param absence_id path string true "Absence ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/available/{absence_id} [get]
func (h *TeacherHandler) Available(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	candidates, err := h.service.Candidates(c.Request.Context(), claims.UserID, c.Param("absence_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, candidates, nil)
}

// CanBeAbsent godoc
// @Summary Teachers eligible for absence declaration
// @Description Teachers holding at least one lesson on the given date's weekday
// @Tags Teachers
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teachers/can_be_absent [get]
func (h *TeacherHandler) CanBeAbsent(c *gin.Context) {
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

	teachers, err := h.service.CanBeAbsent(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, teachers, nil)
}
