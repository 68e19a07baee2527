package order_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"shoply/internal/repositories"
	"shoply/internal/services"
)

var Module = fx.Provide(
	providePurchaseService, providePurchaseRepo)

func providePurchaseRepo(db *gorm.DB) repositories.PurchaseRepositoryInterface {
	return repositories.NewPurchaseRepository(db)
}

func providePurchaseService(
	purchaseRepo repositories.PurchaseRepositoryInterface,
	cartRepo repositories.CartRepositoryInterface,
	itemRepo repositories.ItemRepositoryInterface,
	notifier services.NotificationServiceInterface,
) services.PurchaseServiceInterface {
	return services.NewPurchaseService(purchaseRepo, cartRepo, itemRepo, notifier)
}
