package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Riyogosaki/Crystal/apperrors"
	"github.com/Riyogosaki/Crystal/events"
	"github.com/Riyogosaki/Crystal/models"
	"github.com/Riyogosaki/Crystal/repository"
)

// OrderLine is one submitted checkout line.
type OrderLine struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
}

// OrderView is an order with its payment info and product references
// resolved for display.
type OrderView struct {
	ID          uuid.UUID          `json:"_id"`
	Amount      float64            `json:"amount"`
	PaymentInfo models.PaymentInfo `json:"paymentInfo"`
	CreatedAt   time.Time          `json:"createdAt"`
	Items       []OrderItemView    `json:"items"`
}

// OrderItemView is an order line with its product resolved. Product is
// nil when the catalog entry no longer exists.
type OrderItemView struct {
	ProductID string          `json:"productId"`
	Quantity  int64           `json:"quantity"`
	Product   *models.Product `json:"product"`
}

// NewOrderView projects an order onto its wire shape. Payment method
// and status only ever travel inside paymentInfo; the bare model keeps
// them off the wire.
func NewOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:     order.ID,
		Amount: order.Amount,
		PaymentInfo: models.PaymentInfo{
			Method: order.PaymentMethod,
			Status: order.PaymentStatus,
		},
		CreatedAt: order.CreatedAt,
		Items:     make([]OrderItemView, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, OrderItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return view
}

// CartClearer is the slice of the cart aggregate order placement needs.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// OrderService implements the append-only order ledger.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	cart      CartClearer
	publisher events.Publisher
	logger    *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, cart CartClearer, publisher events.Publisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		cart:      cart,
		publisher: publisher,
		logger:    logger,
	}
}

// PlaceOrder persists an immutable order snapshot with payment status
// Pending, then clears the user's cart. The clear is an idempotent
// delete and runs after the order is durable, so a crash in between
// leaves a placed order plus a stale cart — retrying the clear is
// always safe and never duplicates the order.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, lines []OrderLine, amount float64, method string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, apperrors.Validation("Missing order info")
	}
	if amount <= 0 {
		return nil, apperrors.Validation("Missing order info")
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uid,
		Amount:        amount,
		PaymentMethod: method,
		PaymentStatus: models.PaymentStatusPending,
	}
	for _, line := range lines {
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publishPlaced(ctx, order)

	if err := s.cart.Clear(ctx, userID); err != nil {
		// The order is durable; a stale cart is recoverable on the next
		// clear attempt.
		s.logger.Warn("failed to clear cart after order placement",
			zap.String("user_id", userID),
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID),
		zap.String("method", method))
	return order, nil
}

// History returns the user's orders, most recent first, with product
// references resolved for display.
func (s *OrderService) History(ctx context.Context, userID string) ([]OrderView, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	orders, err := s.orders.FindByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		view, err := s.resolveView(ctx, &order)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// resolveView projects an order and resolves its product references.
func (s *OrderService) resolveView(ctx context.Context, order *models.Order) (OrderView, error) {
	view := NewOrderView(order)
	for i, item := range view.Items {
		oid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			continue
		}
		product, err := s.products.FindByID(ctx, oid)
		switch {
		case err == nil:
			view.Items[i].Product = product
		case errors.Is(err, mongo.ErrNoDocuments):
			// Historical orders outlive catalog entries.
		default:
			return OrderView{}, err
		}
	}
	return view, nil
}

// RecordPaymentResult moves an order's payment status out of Pending.
// Illegal transitions (duplicate callbacks, terminal states) are logged
// and ignored so gateway retries stay harmless.
func (s *OrderService) RecordPaymentResult(ctx context.Context, orderID uuid.UUID, status string) error {
	if !models.CanTransition(models.PaymentStatusPending, status) {
		return apperrors.Validation("Invalid payment status")
	}

	moved, err := s.orders.TransitionPaymentStatus(ctx, orderID, status)
	if err != nil {
		return err
	}
	if !moved {
		s.logger.Info("ignoring payment callback for non-pending order",
			zap.String("order_id", orderID.String()),
			zap.String("status", status))
	}
	return nil
}

// GetForUser fetches one order, scoped to its owner. Someone else's
// order id yields the same NotFound as an unknown one.
func (s *OrderService) GetForUser(ctx context.Context, userID string, orderID uuid.UUID) (*OrderView, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.NotFound("Order not found")
	}
	if order.UserID != uid {
		return nil, apperrors.NotFound("Order not found")
	}
	view, err := s.resolveView(ctx, order)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *OrderService) publishPlaced(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := events.OrderPlacedEvent{
		Event:     "order.placed",
		OrderID:   order.ID.String(),
		UserID:    order.UserID.String(),
		Amount:    order.Amount,
		Method:    order.PaymentMethod,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, order.ID.String(), payload); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}
