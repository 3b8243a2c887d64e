package controllers

import (
	"errors"
	"net/http"

	apperrors "github.com/kadekedwin/billforge/services/common/errors"
	"github.com/kadekedwin/billforge/services/common/logger"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/kadekedwin/billforge/services/receipt-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PrintController handles thermal printing and print history.
type PrintController struct {
	printService services.PrintService
}

func NewPrintController(svc services.PrintService) *PrintController {
	return &PrintController{printService: svc}
}

// PrintThermal handles POST /api/print-thermal
func (pc *PrintController) PrintThermal(ctx *gin.Context) {
	var req models.PrintThermalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.PrintThermalResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	if req.ReceiptData == nil {
		ctx.JSON(http.StatusBadRequest, models.PrintThermalResponse{
			Success: false,
			Message: "Receipt data is required",
		})
		return
	}

	job, err := pc.printService.Print(ctx.Request.Context(), req.ReceiptData, req.PrinterConfig)
	if err != nil {
		resp := models.PrintThermalResponse{Success: false, Error: apperrors.From(err).Detail()}
		if job != nil {
			resp.JobID = job.ID.String()
		}
		logger.Warn(ctx.Request.Context(), "Print request failed", zap.String("job_id", resp.JobID), zap.Error(err))
		if errors.Is(err, apperrors.ErrValidation) {
			resp.Message = "Invalid print request"
			ctx.JSON(http.StatusBadRequest, resp)
			return
		}
		resp.Message = "Failed to print receipt"
		ctx.JSON(http.StatusInternalServerError, resp)
		return
	}

	ctx.JSON(http.StatusOK, models.PrintThermalResponse{
		Success: true,
		Message: "Receipt printed successfully",
		JobID:   job.ID.String(),
	})
}

// ListJobs handles GET /api/print-jobs
func (pc *PrintController) ListJobs(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	jobs, total, err := pc.printService.ListJobs(ctx.Request.Context(), page, limit)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetJob handles GET /api/print-jobs/:id
func (pc *PrintController) GetJob(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
		return
	}

	job, err := pc.printService.GetJob(ctx.Request.Context(), id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, job)
}
