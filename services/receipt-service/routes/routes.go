package routes

import (
	"net/http"

	apperrors "github.com/kadekedwin/billforge/services/common/errors"
	"github.com/kadekedwin/billforge/services/common/middleware"
	"github.com/kadekedwin/billforge/services/receipt-service/controllers"
	"github.com/kadekedwin/billforge/services/receipt-service/web"

	"github.com/gin-gonic/gin"
)

// MaxRequestBody caps /api request bodies. A receipt at its validation limits
// fits well inside it.
const MaxRequestBody = 1 << 20

// Controllers groups the handlers mounted by RegisterRoutes.
type Controllers struct {
	Receipt *controllers.ReceiptController
	Print   *controllers.PrintController
	Proxy   *controllers.ProxyController
	Page    *controllers.PageController
}

// RegisterRoutes sets up the API routes and the page fallback. apiMiddleware
// runs only for /api (rate limiting).
func RegisterRoutes(r *gin.Engine, c Controllers, apiMiddleware ...gin.HandlerFunc) {
	api := r.Group("/api")
	api.Use(apperrors.ErrorMiddleware())
	api.Use(middleware.BodyLimit(MaxRequestBody))
	api.Use(apiMiddleware...)

	api.POST("/receipt/image", c.Receipt.RenderImage)
	api.POST("/receipt/pdf", c.Receipt.RenderPDF)
	api.POST("/print-thermal", c.Print.PrintThermal)
	api.GET("/proxy-image", c.Proxy.ProxyImage)

	api.GET("/print-jobs", c.Print.ListJobs)
	api.GET("/print-jobs/:id", c.Print.GetJob)

	if c.Page != nil {
		r.StaticFS("/static", http.FS(web.Static()))
		r.NoRoute(c.Page.Page)
	}
}
