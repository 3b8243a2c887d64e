package routes

import (
	"github.com/kadekedwin/billforge/services/cart-service/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterCartRoutes mounts the cart API behind the session identity middleware.
func RegisterCartRoutes(r *gin.Engine, controller *controllers.CartController, identity gin.HandlerFunc) {
	api := r.Group("/cart")
	api.Use(identity)
	{
		api.GET("", controller.GetCart)
		api.DELETE("", controller.ClearCart)
		api.POST("/items/:item_id", controller.AddItem)
		api.DELETE("/items/:item_id", controller.RemoveItem)
		api.POST("/quote", controller.Quote)
		api.POST("/checkout", controller.Checkout)
	}
}
