package controllers

import (
	"fmt"
	"net/http"

	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/kadekedwin/billforge/services/receipt-service/services"

	"github.com/gin-gonic/gin"
)

// ReceiptController serves rendered receipts as downloads.
type ReceiptController struct {
	receiptService services.ReceiptService
}

func NewReceiptController(svc services.ReceiptService) *ReceiptController {
	return &ReceiptController{receiptService: svc}
}

// RenderImage handles POST /api/receipt/image
func (rc *ReceiptController) RenderImage(ctx *gin.Context) {
	var req models.RenderImageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if req.ReceiptData == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Receipt data is required"})
		return
	}

	var opts models.ImageOptions
	if req.Options != nil {
		opts = *req.Options
	}

	out, err := rc.receiptService.RenderImage(ctx.Request.Context(), req.ReceiptData, opts)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	sendAttachment(ctx, out)
}

// RenderPDF handles POST /api/receipt/pdf
func (rc *ReceiptController) RenderPDF(ctx *gin.Context) {
	var req models.RenderPDFRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if req.ReceiptData == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Receipt data is required"})
		return
	}

	var opts models.PDFOptions
	if req.Options != nil {
		opts = *req.Options
	}

	out, err := rc.receiptService.RenderPDF(ctx.Request.Context(), req.ReceiptData, opts)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	sendAttachment(ctx, out)
}

func sendAttachment(ctx *gin.Context, out *models.RenderedReceipt) {
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	if out.ArchiveKey != "" {
		ctx.Header("X-Archive-Key", out.ArchiveKey)
	}
	ctx.Data(http.StatusOK, out.ContentType, out.Body)
}
