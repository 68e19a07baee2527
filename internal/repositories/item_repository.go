package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shoply/internal/models/db_models"
)

type ItemFilter struct {
	Category *string
	Search   *string
	Page     int
	PageSize int
}

type ItemRepositoryInterface interface {
	CreateItem(ctx context.Context, item *db_models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]db_models.Item, int64, error)
	UpdateItem(ctx context.Context, item *db_models.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

func NewItemRepository(db *gorm.DB) ItemRepositoryInterface {
	return &itemRepository{db: db}
}

type itemRepository struct {
	db *gorm.DB
}

func (r *itemRepository) CreateItem(ctx context.Context, item *db_models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Item, error) {
	var item db_models.Item
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) ListItems(ctx context.Context, filter ItemFilter) ([]db_models.Item, int64, error) {
	db := r.db.WithContext(ctx).Model(&db_models.Item{})
	if filter.Category != nil {
		db = db.Where("category = ?", *filter.Category)
	}
	if filter.Search != nil {
		pattern := "%" + *filter.Search + "%"
		db = db.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var items []db_models.Item
	err := db.Offset((page - 1) * pageSize).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepository) UpdateItem(ctx context.Context, item *db_models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *itemRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&db_models.Item{}, "id = ?", id).Error
}

// AdjustStock locks the item row so concurrent checkouts cannot oversell.
// A negative delta that would drive stock below zero returns ErrOutOfStock
// at the service layer via the row re-check.
func (r *itemRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item db_models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		next := item.StockQuantity + delta
		if next < 0 {
			return gorm.ErrCheckConstraintViolated
		}
		return tx.Model(&item).Update("stock_quantity", next).Error
	})
}
