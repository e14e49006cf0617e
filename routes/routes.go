package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Riyogosaki/Crystal/controllers"
	"github.com/Riyogosaki/Crystal/middleware"
	"github.com/Riyogosaki/Crystal/services"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Tokens  *services.TokenService
	Auth    *controllers.AuthController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Product *controllers.ProductController
}

// Register wires all endpoint groups onto the router.
func Register(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	session := middleware.RequireSession(d.Tokens)

	auth := r.Group("/api/auth")
	auth.Use(middleware.RateLimit())
	{
		auth.POST("/signup", d.Auth.Signup)
		auth.POST("/login", d.Auth.Login)
		auth.POST("/logout", d.Auth.Logout)
		auth.GET("/me", session, d.Auth.Me)
	}

	cart := r.Group("/api/cart")
	cart.Use(session)
	{
		cart.POST("", d.Cart.AddItem)
		cart.GET("", d.Cart.GetCart)
		cart.PUT("", d.Cart.UpdateItem)
		cart.DELETE("/:productId", d.Cart.RemoveItem)
	}

	order := r.Group("/api/order")
	{
		order.POST("/cod", session, d.Order.PlaceCOD)
		order.POST("/checkout", session, d.Order.Checkout)
		order.GET("/history", session, d.Order.History)
		order.GET("/:id", session, d.Order.GetOrder)
		// Gateway callback authenticates via webhook signature, not a
		// session cookie.
		order.POST("/webhook", d.Order.Webhook)
	}

	product := r.Group("/api/product")
	{
		product.GET("", d.Product.List)
		product.GET("/:id", d.Product.Get)
		product.POST("", session, middleware.RequireRole("admin"), d.Product.Create)
		product.DELETE("/:id", session, middleware.RequireRole("admin"), d.Product.Delete)
	}
}
