package controllers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/kadekedwin/billforge/services/common/middleware"
	"github.com/kadekedwin/billforge/services/receipt-service/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageController serves the application shell for UI routes that passed the
// session gate.
type PageController struct {
	shell  *web.Shell
	gate   *middleware.SessionGate
	logger *zap.Logger
}

func NewPageController(shell *web.Shell, gate *middleware.SessionGate, logger *zap.Logger) *PageController {
	return &PageController{shell: shell, gate: gate, logger: logger}
}

// Page handles every unmatched route.
func (pc *PageController) Page(ctx *gin.Context) {
	path := ctx.Request.URL.Path
	if (ctx.Request.Method != http.MethodGet && ctx.Request.Method != http.MethodHead) ||
		strings.HasPrefix(path, "/api/") {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	var buf bytes.Buffer
	if err := pc.shell.Render(&buf, path, pc.gate.HasSession(ctx.Request)); err != nil {
		pc.logger.Error("Failed to render page", zap.String("path", path), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render page"})
		return
	}
	ctx.Header("Cache-Control", "no-cache")
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
