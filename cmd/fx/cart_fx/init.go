package cart_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"shoply/internal/repositories"
	"shoply/internal/services"
)

var Module = fx.Provide(
	provideCartService, provideCartRepo)

func provideCartRepo(db *gorm.DB) repositories.CartRepositoryInterface {
	return repositories.NewCartRepository(db)
}

func provideCartService(
	cartRepo repositories.CartRepositoryInterface,
	itemRepo repositories.ItemRepositoryInterface,
) services.CartServiceInterface {
	return services.NewCartService(cartRepo, itemRepo)
}
