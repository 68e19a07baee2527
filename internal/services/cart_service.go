package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shoply/internal/models/db_models"
	"shoply/internal/models/request_models"
	"shoply/internal/models/response_models"
	"shoply/internal/repositories"
	"shoply/pkg/utils"
)

type CartServiceInterface interface {
	AddToCart(ctx context.Context, userID uuid.UUID, request request_models.AddToCartRequest) (*response_models.CartResponse, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*response_models.CartResponse, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*response_models.CartResponse, error)
	RemoveFromCart(ctx context.Context, userID, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type CartService struct {
	cartRepo repositories.CartRepositoryInterface
	itemRepo repositories.ItemRepositoryInterface
}

func NewCartService(
	cartRepo repositories.CartRepositoryInterface,
	itemRepo repositories.ItemRepositoryInterface,
) CartServiceInterface {
	return &CartService{cartRepo: cartRepo, itemRepo: itemRepo}
}

func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, request request_models.AddToCartRequest) (*response_models.CartResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, request.ItemId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if item == nil || !item.IsActive {
		return nil, utils.ErrItemNotFound
	}

	cartItem, err := s.cartRepo.FindCartItem(ctx, userID, request.ItemId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	quantity := request.Quantity
	if cartItem != nil {
		quantity += cartItem.Quantity
	}
	if quantity > item.StockQuantity {
		return nil, utils.ErrOutOfStock
	}

	if cartItem == nil {
		cartItem = &db_models.CartItem{
			UserID: userID,
			ItemID: request.ItemId,
		}
	}
	cartItem.Quantity = quantity

	if err := s.cartRepo.UpsertCartItem(ctx, cartItem); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*response_models.CartResponse, error) {
	cartItems, err := s.cartRepo.ListCartItems(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	response := &response_models.CartResponse{
		Items: make([]response_models.CartItemResponse, 0, len(cartItems)),
		Total: decimal.Zero,
	}
	for i := range cartItems {
		ci := &cartItems[i]
		subtotal := ci.Item.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
		response.Items = append(response.Items, response_models.CartItemResponse{
			ItemId:   ci.ItemID.String(),
			Name:     ci.Item.Name,
			Price:    ci.Item.Price,
			Quantity: ci.Quantity,
			Subtotal: subtotal,
		})
		response.Total = response.Total.Add(subtotal)
	}
	return response, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*response_models.CartResponse, error) {
	cartItem, err := s.cartRepo.FindCartItem(ctx, userID, itemID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if cartItem == nil {
		return nil, utils.ErrCartItemNotFound
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if item == nil || quantity > item.StockQuantity {
		return nil, utils.ErrOutOfStock
	}

	cartItem.Quantity = quantity
	if err := s.cartRepo.UpsertCartItem(ctx, cartItem); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, itemID uuid.UUID) error {
	cartItem, err := s.cartRepo.FindCartItem(ctx, userID, itemID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if cartItem == nil {
		return utils.ErrCartItemNotFound
	}
	if err := s.cartRepo.RemoveCartItem(ctx, userID, itemID); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.ClearCart(ctx, userID); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}
