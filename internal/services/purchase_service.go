package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shoply/internal/models/db_models"
	"shoply/internal/models/request_models"
	"shoply/internal/models/response_models"
	"shoply/internal/repositories"
	"shoply/pkg/utils"
)

type PurchaseServiceInterface interface {
	Checkout(ctx context.Context, userID uuid.UUID) ([]response_models.PurchaseResponse, error)
	GetPurchase(ctx context.Context, userID uuid.UUID, isAdmin bool, purchaseID uuid.UUID) (*response_models.PurchaseResponse, error)
	ListMyPurchases(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]response_models.PurchaseResponse, error)
	ListAllPurchases(ctx context.Context, status *db_models.OrderStatus, page, pageSize int) ([]response_models.PurchaseResponse, error)
	UpdateStatus(ctx context.Context, purchaseID uuid.UUID, request request_models.UpdateOrderStatusRequest) (*response_models.PurchaseResponse, error)
}

type PurchaseService struct {
	purchaseRepo repositories.PurchaseRepositoryInterface
	cartRepo     repositories.CartRepositoryInterface
	itemRepo     repositories.ItemRepositoryInterface
	notifier     NotificationServiceInterface
}

func NewPurchaseService(
	purchaseRepo repositories.PurchaseRepositoryInterface,
	cartRepo repositories.CartRepositoryInterface,
	itemRepo repositories.ItemRepositoryInterface,
	notifier NotificationServiceInterface,
) PurchaseServiceInterface {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		cartRepo:     cartRepo,
		itemRepo:     itemRepo,
		notifier:     notifier,
	}
}

// Checkout converts the cart into one purchase row per cart line and
// decrements stock. Stock is re-checked under row locks, so a cart that was
// valid when displayed can still fail here.
func (s *PurchaseService) Checkout(ctx context.Context, userID uuid.UUID) ([]response_models.PurchaseResponse, error) {
	cartItems, err := s.cartRepo.ListCartItems(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if len(cartItems) == 0 {
		return nil, utils.ErrCartEmpty
	}

	purchases := make([]db_models.Purchase, 0, len(cartItems))
	adjusted := make([]db_models.CartItem, 0, len(cartItems))
	for i := range cartItems {
		ci := &cartItems[i]
		if err := s.itemRepo.AdjustStock(ctx, ci.ItemID, -ci.Quantity); err != nil {
			for j := range adjusted {
				_ = s.itemRepo.AdjustStock(ctx, adjusted[j].ItemID, adjusted[j].Quantity)
			}
			if errors.Is(err, gorm.ErrCheckConstraintViolated) {
				return nil, utils.ErrOutOfStock
			}
			return nil, utils.ErrDatabaseError
		}
		adjusted = append(adjusted, *ci)

		purchases = append(purchases, db_models.Purchase{
			CustomerID: userID,
			ItemID:     ci.ItemID,
			Quantity:   ci.Quantity,
			TotalPrice: ci.Item.Price.Mul(decimal.NewFromInt(int64(ci.Quantity))),
			Status:     db_models.OrderStatusPending,
		})
	}

	if err := s.purchaseRepo.CreatePurchases(ctx, purchases); err != nil {
		for j := range adjusted {
			_ = s.itemRepo.AdjustStock(ctx, adjusted[j].ItemID, adjusted[j].Quantity)
		}
		return nil, utils.ErrDatabaseError
	}
	if err := s.cartRepo.ClearCart(ctx, userID); err != nil {
		return nil, utils.ErrDatabaseError
	}

	s.notifier.NotifyOrderPlaced(ctx, userID, purchases)

	responses := make([]response_models.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		purchases[i].Item = cartItems[i].Item
		responses = append(responses, *toPurchaseResponse(&purchases[i]))
	}
	return responses, nil
}

func (s *PurchaseService) GetPurchase(ctx context.Context, userID uuid.UUID, isAdmin bool, purchaseID uuid.UUID) (*response_models.PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if purchase == nil {
		return nil, utils.ErrPurchaseNotFound
	}
	if !isAdmin && purchase.CustomerID != userID {
		return nil, utils.ErrForbidden
	}
	return toPurchaseResponse(purchase), nil
}

func (s *PurchaseService) ListMyPurchases(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]response_models.PurchaseResponse, error) {
	purchases, err := s.purchaseRepo.ListByCustomer(ctx, userID, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toPurchaseResponses(purchases), nil
}

func (s *PurchaseService) ListAllPurchases(ctx context.Context, status *db_models.OrderStatus, page, pageSize int) ([]response_models.PurchaseResponse, error) {
	purchases, err := s.purchaseRepo.ListAll(ctx, status, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toPurchaseResponses(purchases), nil
}

func (s *PurchaseService) UpdateStatus(ctx context.Context, purchaseID uuid.UUID, request request_models.UpdateOrderStatusRequest) (*response_models.PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if purchase == nil {
		return nil, utils.ErrPurchaseNotFound
	}

	purchase.Status = db_models.OrderStatus(request.Status)
	if request.TrackingNumber != nil {
		purchase.TrackingNumber = request.TrackingNumber
	}
	if request.Notes != nil {
		purchase.Notes = request.Notes
	}

	if err := s.purchaseRepo.UpdatePurchase(ctx, purchase); err != nil {
		return nil, utils.ErrDatabaseError
	}

	s.notifier.NotifyOrderStatusChanged(ctx, purchase)

	return toPurchaseResponse(purchase), nil
}

func toPurchaseResponse(purchase *db_models.Purchase) *response_models.PurchaseResponse {
	return &response_models.PurchaseResponse{
		ID:             purchase.ID.String(),
		ItemId:         purchase.ItemID.String(),
		ItemName:       purchase.Item.Name,
		Quantity:       purchase.Quantity,
		TotalPrice:     purchase.TotalPrice,
		Status:         string(purchase.Status),
		TrackingNumber: purchase.TrackingNumber,
		Notes:          purchase.Notes,
		CreatedAt:      purchase.CreatedAt,
	}
}

func toPurchaseResponses(purchases []db_models.Purchase) []response_models.PurchaseResponse {
	responses := make([]response_models.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		responses = append(responses, *toPurchaseResponse(&purchases[i]))
	}
	return responses
}
