package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shoply/internal/models/db_models"
)

type PurchaseRepositoryInterface interface {
	CreatePurchases(ctx context.Context, purchases []db_models.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Purchase, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]db_models.Purchase, error)
	ListAll(ctx context.Context, status *db_models.OrderStatus, page, pageSize int) ([]db_models.Purchase, error)
	UpdatePurchase(ctx context.Context, purchase *db_models.Purchase) error
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepositoryInterface {
	return &purchaseRepository{db: db}
}

type purchaseRepository struct {
	db *gorm.DB
}

func (r *purchaseRepository) CreatePurchases(ctx context.Context, purchases []db_models.Purchase) error {
	return r.db.WithContext(ctx).Create(&purchases).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Purchase, error) {
	var purchase db_models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Item").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]db_models.Purchase, error) {
	var purchases []db_models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("customer_id = ?", customerID).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) ListAll(ctx context.Context, status *db_models.OrderStatus, page, pageSize int) ([]db_models.Purchase, error) {
	db := r.db.WithContext(ctx).Preload("Item")
	if status != nil {
		db = db.Where("status = ?", *status)
	}
	var purchases []db_models.Purchase
	err := db.Offset((page - 1) * pageSize).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) UpdatePurchase(ctx context.Context, purchase *db_models.Purchase) error {
	return r.db.WithContext(ctx).Save(purchase).Error
}
