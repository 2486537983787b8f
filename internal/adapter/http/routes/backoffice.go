package routes

import (
	"retail_backoffice/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathUsers    = "/users"
	PathProducts = "/products"
	PathCarts    = "/carts"
	PathOrders   = "/orders"
)

func addUserRoutes(rg *gin.RouterGroup, h *handlers.UserHandler) {
	users := rg.Group(PathUsers)
	{
		// Conversational surface.
		users.GET("/search", h.SearchUsers)
		users.POST("/upsert", h.UpsertUser)

		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/by_email", h.GetUserByEmail)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func addProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	products := rg.Group(PathProducts)
	{
		products.GET("", h.ListProducts)
		products.GET("/search", h.SearchProducts)
		products.POST("", h.CreateProduct)
		products.POST("/upsert", h.UpsertProduct)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

func addCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler) {
	carts := rg.Group(PathCarts)
	{
		// Conversational surface.
		carts.POST("/add_item", h.AddItem)
		carts.GET("/summary", h.GetSummary)
		carts.POST("/clear", h.Clear)

		carts.GET("", h.ListCarts)
		carts.GET("/:id", h.GetCart)
		carts.PATCH("/:id/status", h.UpdateStatus)
		carts.DELETE("/:id", h.DeleteCart)
	}
}

func addOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler) {
	orders := rg.Group(PathOrders)
	{
		// Conversational surface.
		orders.POST("/checkout", h.Checkout)
		orders.GET("/last", h.LastOrder)
		orders.GET("/by_user", h.OrdersByUser)
		orders.GET("/payment_link", h.PaymentLink)

		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id/payment_status", h.UpdatePaymentStatus)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}
