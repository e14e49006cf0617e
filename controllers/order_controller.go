package controllers

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/Riyogosaki/Crystal/apperrors"
	"github.com/Riyogosaki/Crystal/middleware"
	"github.com/Riyogosaki/Crystal/models"
	"github.com/Riyogosaki/Crystal/services"
)

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	Items  []services.OrderLine `json:"items" binding:"required,dive"`
	Amount float64              `json:"amount" binding:"required"`
}

type OrderController struct {
	orders   *services.OrderService
	payments *services.PaymentService
	logger   *zap.Logger
}

func NewOrderController(orders *services.OrderService, payments *services.PaymentService, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, payments: payments, logger: logger}
}

// PlaceCOD places a cash-on-delivery order. COD orders stay Pending
// until fulfillment is recorded out of band.
func (oc *OrderController) PlaceCOD(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order info"})
		return
	}

	order, err := oc.orders.PlaceOrder(c.Request.Context(), userID, req.Items, req.Amount, models.PaymentMethodCOD)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Order placed successfully", "order": services.NewOrderView(order)})
}

// Checkout places a gateway order and opens a payment intent for it.
// The client completes the payment against the returned client secret;
// the webhook flips the order's status when the gateway reports back.
// The client falls back to COD if this call fails.
func (oc *OrderController) Checkout(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order info"})
		return
	}

	order, err := oc.orders.PlaceOrder(c.Request.Context(), userID, req.Items, req.Amount, models.PaymentMethodGateway)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	intent, err := oc.payments.CreateIntent(minorUnits(order.Amount), "inr", order.ID.String(), userID)
	if err != nil {
		oc.logger.Error("payment intent creation failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		apperrors.Respond(c, apperrors.Dependency("Payment gateway unavailable", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"order":         services.NewOrderView(order),
		"client_secret": intent.ClientSecret,
	})
}

// Webhook receives the gateway's payment-confirmation callback. The
// signature is verified before anything else; unsigned calls cannot
// move money state.
func (oc *OrderController) Webhook(c *gin.Context) {
	event, err := oc.payments.ParseWebhook(c.Request)
	if err != nil {
		oc.logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	var status string
	switch event.Type {
	case "payment_intent.succeeded":
		status = models.PaymentStatusPaid
	case "payment_intent.payment_failed":
		status = models.PaymentStatusFailed
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		oc.logger.Error("failed to unmarshal payment intent", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	orderID, err := uuid.Parse(intent.Metadata["order_id"])
	if err != nil {
		oc.logger.Warn("webhook missing order metadata", zap.String("event_id", event.ID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	if err := oc.orders.RecordPaymentResult(c.Request.Context(), orderID, status); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// minorUnits converts a decimal amount to the gateway's smallest
// currency unit. Rounded, not truncated: float products like 19.99*100
// land just below the integer.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// GetOrder returns one of the caller's orders, for the payment page's
// per-order lookup. Another user's order id looks identical to an
// unknown one.
func (oc *OrderController) GetOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := oc.orders.GetForUser(c.Request.Context(), userID, orderID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// History returns the caller's orders, newest first.
func (oc *OrderController) History(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	orders, err := oc.orders.History(c.Request.Context(), userID)
	if err != nil {
		oc.logger.Error("order history failed", zap.String("user_id", userID), zap.Error(err))
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
