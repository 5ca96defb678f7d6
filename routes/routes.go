package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kraken-commerce/backend/controllers"
)

// Register wires the catalog, cart, and order route trees.
func Register(r *gin.Engine, catalog *controllers.CatalogController, cart *controllers.CartController, order *controllers.OrderController) {
	catalogRoutes := r.Group("/catalog")
	catalogRoutes.GET("", catalog.GetProducts)
	catalogRoutes.POST("", catalog.CreateProduct)
	catalogRoutes.GET("/:id", catalog.GetProduct)
	catalogRoutes.PUT("/:id", catalog.UpdateProduct)
	catalogRoutes.DELETE("/:id", catalog.DeleteProduct)

	cartRoutes := r.Group("/cart")
	cartRoutes.GET("", cart.GetCarts)
	cartRoutes.POST("", cart.AddItem)
	cartRoutes.GET("/:userName", cart.GetCart)
	cartRoutes.DELETE("/:userName", cart.DeleteCart)
	cartRoutes.POST("/checkout", cart.Checkout)

	orderRoutes := r.Group("/order")
	orderRoutes.GET("", order.GetAllOrders)
	orderRoutes.POST("", order.CreateOrder)
	orderRoutes.GET("/:userName", order.GetUserOrders)
}
