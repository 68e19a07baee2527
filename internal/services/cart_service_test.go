package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shoply/internal/models/db_models"
	"shoply/internal/models/request_models"
	"shoply/internal/repositories"
	"shoply/internal/services"
	"shoply/pkg/utils"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) UpsertCartItem(ctx context.Context, cartItem *db_models.CartItem) error {
	args := m.Called(ctx, cartItem)
	return args.Error(0)
}

func (m *MockCartRepository) FindCartItem(ctx context.Context, userID, itemID uuid.UUID) (*db_models.CartItem, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.CartItem), args.Error(1)
}

func (m *MockCartRepository) ListCartItems(ctx context.Context, userID uuid.UUID) ([]db_models.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db_models.CartItem), args.Error(1)
}

func (m *MockCartRepository) RemoveCartItem(ctx context.Context, userID, itemID uuid.UUID) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

func (m *MockCartRepository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) CreateItem(ctx context.Context, item *db_models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Item), args.Error(1)
}

func (m *MockItemRepository) ListItems(ctx context.Context, filter repositories.ItemFilter) ([]db_models.Item, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]db_models.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemRepository) UpdateItem(ctx context.Context, item *db_models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func testItem(id uuid.UUID, price string, stock int) *db_models.Item {
	item := &db_models.Item{
		Name:          "Mechanical Keyboard",
		Price:         decimal.RequireFromString(price),
		Category:      "electronics",
		StockQuantity: stock,
		IsActive:      true,
	}
	item.ID = id
	return item
}

func TestAddToCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	itemID := uuid.New()

	t.Run("adds a new line and totals the cart", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		itemRepo := new(MockItemRepository)
		svc := services.NewCartService(cartRepo, itemRepo)

		item := testItem(itemID, "25.50", 10)

		cartRepo.On("FindCartItem", ctx, userID, itemID).Return(nil, nil)
		itemRepo.On("FindByID", ctx, itemID).Return(item, nil)
		cartRepo.On("UpsertCartItem", ctx, mock.MatchedBy(func(ci *db_models.CartItem) bool {
			return ci.Quantity == 2 && ci.ItemID == itemID
		})).Return(nil)
		cartRepo.On("ListCartItems", ctx, userID).Return([]db_models.CartItem{
			{UserID: userID, ItemID: itemID, Quantity: 2, Item: *item},
		}, nil)

		cart, err := svc.AddToCart(ctx, userID, request_models.AddToCartRequest{ItemId: itemID, Quantity: 2})
		require.NoError(t, err)

		require.Len(t, cart.Items, 1)
		assert.True(t, cart.Total.Equal(decimal.RequireFromString("51.00")), "total %s", cart.Total)
	})

	t.Run("accumulates quantity on an existing line", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		itemRepo := new(MockItemRepository)
		svc := services.NewCartService(cartRepo, itemRepo)

		item := testItem(itemID, "25.50", 10)
		existing := &db_models.CartItem{UserID: userID, ItemID: itemID, Quantity: 3}

		itemRepo.On("FindByID", ctx, itemID).Return(item, nil)
		cartRepo.On("FindCartItem", ctx, userID, itemID).Return(existing, nil)
		cartRepo.On("UpsertCartItem", ctx, mock.MatchedBy(func(ci *db_models.CartItem) bool {
			return ci.Quantity == 5
		})).Return(nil)
		cartRepo.On("ListCartItems", ctx, userID).Return([]db_models.CartItem{}, nil)

		_, err := svc.AddToCart(ctx, userID, request_models.AddToCartRequest{ItemId: itemID, Quantity: 2})
		assert.NoError(t, err)
	})

	t.Run("rejects quantities beyond stock", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		itemRepo := new(MockItemRepository)
		svc := services.NewCartService(cartRepo, itemRepo)

		itemRepo.On("FindByID", ctx, itemID).Return(testItem(itemID, "25.50", 1), nil)
		cartRepo.On("FindCartItem", ctx, userID, itemID).Return(nil, nil)

		_, err := svc.AddToCart(ctx, userID, request_models.AddToCartRequest{ItemId: itemID, Quantity: 2})
		assert.ErrorIs(t, err, utils.ErrOutOfStock)
	})

	t.Run("rejects inactive items", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		itemRepo := new(MockItemRepository)
		svc := services.NewCartService(cartRepo, itemRepo)

		inactive := testItem(itemID, "25.50", 10)
		inactive.IsActive = false
		itemRepo.On("FindByID", ctx, itemID).Return(inactive, nil)

		_, err := svc.AddToCart(ctx, userID, request_models.AddToCartRequest{ItemId: itemID, Quantity: 1})
		assert.ErrorIs(t, err, utils.ErrItemNotFound)
	})
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	itemID := uuid.New()

	t.Run("empty cart cannot be checked out", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		itemRepo := new(MockItemRepository)
		purchaseRepo := new(MockPurchaseRepository)
		svc := services.NewPurchaseService(purchaseRepo, cartRepo, itemRepo, &stubNotifier{})

		cartRepo.On("ListCartItems", ctx, userID).Return([]db_models.CartItem{}, nil)

		_, err := svc.Checkout(ctx, userID)
		assert.ErrorIs(t, err, utils.ErrCartEmpty)
	})

	t.Run("checkout decrements stock and clears the cart", func(t *testing.T) {
		cartRepo := new(MockCartRepository)
		itemRepo := new(MockItemRepository)
		purchaseRepo := new(MockPurchaseRepository)
		svc := services.NewPurchaseService(purchaseRepo, cartRepo, itemRepo, &stubNotifier{})

		item := testItem(itemID, "19.99", 5)
		cartRepo.On("ListCartItems", ctx, userID).Return([]db_models.CartItem{
			{UserID: userID, ItemID: itemID, Quantity: 2, Item: *item},
		}, nil)
		itemRepo.On("AdjustStock", ctx, itemID, -2).Return(nil)
		purchaseRepo.On("CreatePurchases", ctx, mock.MatchedBy(func(ps []db_models.Purchase) bool {
			return len(ps) == 1 &&
				ps[0].TotalPrice.Equal(decimal.RequireFromString("39.98")) &&
				ps[0].Status == db_models.OrderStatusPending
		})).Return(nil)
		cartRepo.On("ClearCart", ctx, userID).Return(nil)

		purchases, err := svc.Checkout(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, purchases, 1)
	})
}
