package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplenze/supplenze-api/internal/service"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
	"github.com/supplenze/supplenze-api/pkg/response"
)

// ExportHandler serves downloadable substitution plans.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// DailyPlan godoc
// @Summary Download the daily substitution plan
// @Description Render the absences of one date as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /exports/daily-plan [get]
func (h *ExportHandler) DailyPlan(c *gin.Context) {
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
	format := service.PlanFormat(c.DefaultQuery("format", string(service.PlanFormatCSV)))

	file, err := h.service.DailyPlan(c.Request.Context(), claims.UserID, date, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
