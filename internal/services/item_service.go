package services

import (
	"context"

	"github.com/google/uuid"

	"shoply/internal/models/db_models"
	"shoply/internal/models/request_models"
	"shoply/internal/models/response_models"
	"shoply/internal/repositories"
	"shoply/pkg/utils"
)

type ItemServiceInterface interface {
	CreateItem(ctx context.Context, creatorID uuid.UUID, request request_models.CreateItemRequest) (*response_models.ItemResponse, error)
	GetItem(ctx context.Context, id uuid.UUID) (*response_models.ItemResponse, error)
	ListItems(ctx context.Context, filter repositories.ItemFilter) (*response_models.ItemListResponse, error)
	UpdateItem(ctx context.Context, id uuid.UUID, request request_models.UpdateItemRequest) (*response_models.ItemResponse, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	SetItemImage(ctx context.Context, id uuid.UUID, imageURL string) error
}

type ItemService struct {
	itemRepo repositories.ItemRepositoryInterface
}

func NewItemService(itemRepo repositories.ItemRepositoryInterface) ItemServiceInterface {
	return &ItemService{itemRepo: itemRepo}
}

func (s *ItemService) CreateItem(ctx context.Context, creatorID uuid.UUID, request request_models.CreateItemRequest) (*response_models.ItemResponse, error) {
	if request.Price.IsNegative() || request.Price.IsZero() {
		return nil, utils.ErrInvalidPrice
	}

	item := &db_models.Item{
		Name:          request.Name,
		Description:   request.Description,
		Price:         request.Price,
		Category:      request.Category,
		StockQuantity: request.StockQuantity,
		IsActive:      true,
		CreatedBy:     creatorID,
	}
	if err := s.itemRepo.CreateItem(ctx, item); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toItemResponse(item), nil
}

func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*response_models.ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if item == nil || !item.IsActive {
		return nil, utils.ErrItemNotFound
	}
	return toItemResponse(item), nil
}

func (s *ItemService) ListItems(ctx context.Context, filter repositories.ItemFilter) (*response_models.ItemListResponse, error) {
	items, total, err := s.itemRepo.ListItems(ctx, filter)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	responses := make([]response_models.ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *toItemResponse(&items[i]))
	}
	return &response_models.ItemListResponse{
		Items:    responses,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, id uuid.UUID, request request_models.UpdateItemRequest) (*response_models.ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if item == nil {
		return nil, utils.ErrItemNotFound
	}

	if request.Name != nil {
		item.Name = *request.Name
	}
	if request.Description != nil {
		item.Description = *request.Description
	}
	if request.Price != nil {
		if request.Price.IsNegative() || request.Price.IsZero() {
			return nil, utils.ErrInvalidPrice
		}
		item.Price = *request.Price
	}
	if request.Category != nil {
		item.Category = *request.Category
	}
	if request.StockQuantity != nil {
		item.StockQuantity = *request.StockQuantity
	}

	if err := s.itemRepo.UpdateItem(ctx, item); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toItemResponse(item), nil
}

func (s *ItemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if item == nil {
		return utils.ErrItemNotFound
	}
	if err := s.itemRepo.DeleteItem(ctx, id); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *ItemService) SetItemImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if item == nil {
		return utils.ErrItemNotFound
	}
	if imageURL == "" {
		item.ImageURL = nil
	} else {
		item.ImageURL = &imageURL
	}
	if err := s.itemRepo.UpdateItem(ctx, item); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func toItemResponse(item *db_models.Item) *response_models.ItemResponse {
	return &response_models.ItemResponse{
		ID:            item.ID.String(),
		Name:          item.Name,
		Description:   item.Description,
		Price:         item.Price,
		Category:      item.Category,
		StockQuantity: item.StockQuantity,
		ImageURL:      item.ImageURL,
		CreatedBy:     item.CreatedBy.String(),
		CreatedAt:     item.CreatedAt,
	}
}
