package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Riyogosaki/Crystal/apperrors"
	"github.com/Riyogosaki/Crystal/models"
	"github.com/Riyogosaki/Crystal/repository"
)

// memCartStore is an in-memory CartStore honoring the same contract as
// the Redis implementation: per-line increments, no line creation on
// SetQuantity, no-op removal of absent lines.
type memCartStore struct {
	carts map[string]map[string]int64
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[string]map[string]int64)}
}

func (s *memCartStore) AddItem(_ context.Context, userID, productID string) (int64, error) {
	cart, ok := s.carts[userID]
	if !ok {
		cart = make(map[string]int64)
		s.carts[userID] = cart
	}
	cart[productID]++
	return cart[productID], nil
}

func (s *memCartStore) Get(_ context.Context, userID string) (map[string]int64, error) {
	out := make(map[string]int64)
	for id, qty := range s.carts[userID] {
		out[id] = qty
	}
	return out, nil
}

func (s *memCartStore) SetQuantity(_ context.Context, userID, productID string, quantity int64) error {
	cart, ok := s.carts[userID]
	if !ok {
		return repository.ErrCartNotFound
	}
	if _, ok := cart[productID]; !ok {
		return repository.ErrItemNotFound
	}
	cart[productID] = quantity
	return nil
}

func (s *memCartStore) RemoveItem(_ context.Context, userID, productID string) error {
	cart, ok := s.carts[userID]
	if !ok {
		return repository.ErrCartNotFound
	}
	delete(cart, productID)
	return nil
}

func (s *memCartStore) Clear(_ context.Context, userID string) error {
	delete(s.carts, userID)
	return nil
}

// memProductRepo is an in-memory catalog.
type memProductRepo struct {
	products map[primitive.ObjectID]models.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[primitive.ObjectID]models.Product)}
}

func (r *memProductRepo) Create(_ context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &p, nil
}

func (r *memProductRepo) FindAll(_ context.Context) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memProductRepo) Delete(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(r.products, id)
	return &p, nil
}

func newCartFixture(t *testing.T) (*CartService, *memCartStore, primitive.ObjectID) {
	t.Helper()
	store := newMemCartStore()
	catalog := newMemProductRepo()

	product := &models.Product{Name: "Crystal Vase", Price: 100}
	require.NoError(t, catalog.Create(context.Background(), product))

	return NewCartService(store, catalog, zap.NewNop()), store, product.ID
}

func TestAddItem_RepeatedAddsAccumulate(t *testing.T) {
	svc, _, productID := newCartFixture(t)
	ctx := context.Background()

	const n = 5
	var cart *models.ResolvedCart
	var err error
	for i := 0; i < n; i++ {
		cart, err = svc.AddItem(ctx, "u1", productID.Hex())
		require.NoError(t, err)
	}

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(n), cart.Items[0].Quantity)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "Crystal Vase", cart.Items[0].Product.Name)
}

func TestGetCart_EmptyWhenNoCartExists(t *testing.T) {
	svc, _, _ := newCartFixture(t)

	cart, err := svc.GetCart(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestGetCart_ToleratesDanglingProductReference(t *testing.T) {
	store := newMemCartStore()
	catalog := newMemProductRepo()
	svc := NewCartService(store, catalog, zap.NewNop())
	ctx := context.Background()

	// A line whose product never existed in (or was deleted from) the
	// catalog must survive the read.
	ghost := primitive.NewObjectID().Hex()
	_, err := store.AddItem(ctx, "u1", ghost)
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Nil(t, cart.Items[0].Product)
	assert.Equal(t, int64(1), cart.Items[0].Quantity)
}

func TestSetItemQuantity_OverwritesExistingLine(t *testing.T) {
	svc, _, productID := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", productID.Hex())
	require.NoError(t, err)

	cart, err := svc.SetItemQuantity(ctx, "u1", productID.Hex(), 7)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(7), cart.Items[0].Quantity)
}

func TestSetItemQuantity_NotFoundLeavesNoSideEffect(t *testing.T) {
	svc, store, productID := newCartFixture(t)
	ctx := context.Background()

	// No cart at all.
	_, err := svc.SetItemQuantity(ctx, "u1", productID.Hex(), 3)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
	assert.Empty(t, store.carts)

	// Cart exists, line does not.
	_, err = svc.AddItem(ctx, "u1", productID.Hex())
	require.NoError(t, err)

	other := primitive.NewObjectID().Hex()
	_, err = svc.SetItemQuantity(ctx, "u1", other, 3)
	require.Error(t, err)
	appErr, ok = err.(*apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)

	_, created := store.carts["u1"][other]
	assert.False(t, created, "absent line must not be created")
}

func TestSetItemQuantity_RejectsQuantityBelowOne(t *testing.T) {
	svc, _, productID := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", productID.Hex())
	require.NoError(t, err)

	for _, qty := range []int64{0, -1} {
		_, err := svc.SetItemQuantity(ctx, "u1", productID.Hex(), qty)
		require.Error(t, err)
		appErr, ok := err.(*apperrors.Error)
		require.True(t, ok)
		assert.Equal(t, 400, appErr.Code)
	}
}

func TestRemoveItem_AbsentLineIsNoOp(t *testing.T) {
	svc, store, productID := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", productID.Hex())
	require.NoError(t, err)
	before, err := store.Get(ctx, "u1")
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "u1", primitive.NewObjectID().Hex())
	require.NoError(t, err)

	after, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, cart.Items, 1)
}

func TestRemoveItem_NoCartIsNotFound(t *testing.T) {
	svc, _, productID := newCartFixture(t)

	_, err := svc.RemoveItem(context.Background(), "nobody", productID.Hex())
	require.Error(t, err)
	appErr, ok := err.(*apperrors.Error)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}

func TestRemoveItem_DeletesMatchingLine(t *testing.T) {
	svc, _, productID := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", productID.Hex())
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "u1", productID.Hex())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
