package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Riyogosaki/Crystal/apperrors"
	"github.com/Riyogosaki/Crystal/middleware"
	"github.com/Riyogosaki/Crystal/services"
)

// AddItemRequest is the add-to-cart payload.
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// UpdateItemRequest is the set-quantity payload.
type UpdateItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
}

type CartController struct {
	cart   *services.CartService
	logger *zap.Logger
}

func NewCartController(cart *services.CartService, logger *zap.Logger) *CartController {
	return &CartController{cart: cart, logger: logger}
}

// AddItem adds one of the product to the caller's cart.
func (cc *CartController) AddItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := cc.cart.AddItem(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		cc.logger.Error("add to cart failed", zap.String("user_id", userID), zap.Error(err))
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product added to cart", "cart": cart})
}

// GetCart returns the caller's cart with resolved product data.
func (cc *CartController) GetCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	cart, err := cc.cart.GetCart(c.Request.Context(), userID)
	if err != nil {
		cc.logger.Error("get cart failed", zap.String("user_id", userID), zap.Error(err))
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateItem overwrites the quantity of an existing cart line.
func (cc *CartController) UpdateItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := cc.cart.SetItemQuantity(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Quantity updated", "cart": cart})
}

// RemoveItem deletes one line from the caller's cart.
func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	cart, err := cc.cart.RemoveItem(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed", "cart": cart})
}
