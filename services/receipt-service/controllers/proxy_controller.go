package controllers

import (
	"net/http"

	apperrors "github.com/kadekedwin/billforge/services/common/errors"
	"github.com/kadekedwin/billforge/services/receipt-service/services"

	"github.com/gin-gonic/gin"
)

const proxyCacheControl = "public, max-age=31536000, immutable"

// ProxyController relays remote images to the UI.
type ProxyController struct {
	proxyService services.ImageProxyService
}

func NewProxyController(svc services.ImageProxyService) *ProxyController {
	return &ProxyController{proxyService: svc}
}

// ProxyImage handles GET /api/proxy-image?url=
func (pc *ProxyController) ProxyImage(ctx *gin.Context) {
	rawURL := ctx.Query("url")
	if rawURL == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "URL parameter is required"})
		return
	}

	img, err := pc.proxyService.Fetch(ctx.Request.Context(), rawURL)
	if err != nil {
		appErr := apperrors.From(err)
		ctx.JSON(appErr.Code, gin.H{"error": appErr.Detail()})
		return
	}

	cacheStatus := "MISS"
	if img.Cached {
		cacheStatus = "HIT"
	}
	ctx.Header("Cache-Control", proxyCacheControl)
	ctx.Header("X-Cache", cacheStatus)
	ctx.Data(http.StatusOK, img.ContentType, img.Body)
}
