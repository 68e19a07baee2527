package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shoply/internal/models/db_models"
)

type CartRepositoryInterface interface {
	UpsertCartItem(ctx context.Context, cartItem *db_models.CartItem) error
	FindCartItem(ctx context.Context, userID, itemID uuid.UUID) (*db_models.CartItem, error)
	ListCartItems(ctx context.Context, userID uuid.UUID) ([]db_models.CartItem, error)
	RemoveCartItem(ctx context.Context, userID, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

func NewCartRepository(db *gorm.DB) CartRepositoryInterface {
	return &cartRepository{db: db}
}

type cartRepository struct {
	db *gorm.DB
}

func (r *cartRepository) UpsertCartItem(ctx context.Context, cartItem *db_models.CartItem) error {
	return r.db.WithContext(ctx).Save(cartItem).Error
}

func (r *cartRepository) FindCartItem(ctx context.Context, userID, itemID uuid.UUID) (*db_models.CartItem, error) {
	var cartItem db_models.CartItem
	err := r.db.WithContext(ctx).
		First(&cartItem, "user_id = ? AND item_id = ?", userID, itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cartItem, nil
}

func (r *cartRepository) ListCartItems(ctx context.Context, userID uuid.UUID) ([]db_models.CartItem, error) {
	var cartItems []db_models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&cartItems).Error
	if err != nil {
		return nil, err
	}
	return cartItems, nil
}

func (r *cartRepository) RemoveCartItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&db_models.CartItem{}, "user_id = ? AND item_id = ?", userID, itemID).Error
}

func (r *cartRepository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&db_models.CartItem{}, "user_id = ?", userID).Error
}
