package services

import (
	"context"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Riyogosaki/Crystal/apperrors"
	"github.com/Riyogosaki/Crystal/models"
	"github.com/Riyogosaki/Crystal/repository"
)

// CartService implements the cart aggregate over an atomic per-line
// store. All methods take the owning user's id; session resolution
// happens at the HTTP boundary.
type CartService struct {
	store    repository.CartStore
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewCartService(store repository.CartStore, products repository.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{store: store, products: products, logger: logger}
}

// AddItem puts one more of the product into the user's cart. The cart
// and the line are created on first use; repeated calls keep
// incrementing, since "add to cart" accumulates.
func (s *CartService) AddItem(ctx context.Context, userID, productID string) (*models.ResolvedCart, error) {
	if _, err := primitive.ObjectIDFromHex(productID); err != nil {
		return nil, apperrors.Validation("Invalid product id")
	}

	if _, err := s.store.AddItem(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// GetCart returns the cart with product references resolved for
// display. A user with no cart gets an empty-items cart, not an error.
// Lines whose product has been deleted are kept with a nil product.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.ResolvedCart, error) {
	lines, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart := &models.ResolvedCart{UserID: userID, Items: []models.ResolvedCartItem{}}

	// Hash fields come back unordered; sort for a stable response.
	productIDs := make([]string, 0, len(lines))
	for id := range lines {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	for _, productID := range productIDs {
		item := models.ResolvedCartItem{Quantity: lines[productID]}

		oid, err := primitive.ObjectIDFromHex(productID)
		if err == nil {
			product, err := s.products.FindByID(ctx, oid)
			switch {
			case err == nil:
				item.Product = product
			case errors.Is(err, mongo.ErrNoDocuments):
				// Dangling reference; tolerated on read.
				s.logger.Warn("cart references deleted product",
					zap.String("user_id", userID),
					zap.String("product_id", productID))
			default:
				return nil, err
			}
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, nil
}

// SetItemQuantity overwrites the quantity of an existing line.
// Quantities below 1 are rejected; removal is its own operation.
func (s *CartService) SetItemQuantity(ctx context.Context, userID, productID string, quantity int64) (*models.ResolvedCart, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("Quantity must be at least 1")
	}

	if err := s.store.SetQuantity(ctx, userID, productID, quantity); err != nil {
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			return nil, apperrors.NotFound("Cart not found")
		case errors.Is(err, repository.ErrItemNotFound):
			return nil, apperrors.NotFound("Item not found")
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes the line for productID. Removing a line that is
// not in the cart is a silent no-op; a user with no cart at all gets
// NotFound.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.ResolvedCart, error) {
	if err := s.store.RemoveItem(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, apperrors.NotFound("Cart not found")
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// Clear empties the user's cart. Idempotent, so it is safe to retry
// after a crash between order placement and cart clearing.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}
