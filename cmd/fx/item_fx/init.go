package item_fx

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shoply/internal/repositories"
	"shoply/internal/services"
)

var Module = fx.Provide(
	provideItemService, provideItemRepo, provideUploadService)

func provideItemRepo(db *gorm.DB) repositories.ItemRepositoryInterface {
	return repositories.NewItemRepository(db)
}

func provideItemService(itemRepo repositories.ItemRepositoryInterface) services.ItemServiceInterface {
	return services.NewItemService(itemRepo)
}

func provideUploadService(itemSvc services.ItemServiceInterface, logger *zap.Logger) services.UploadServiceInterface {
	baseDir := os.Getenv("UPLOAD_DIR")
	if baseDir == "" {
		baseDir = "./uploads"
	}
	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return services.NewUploadService(baseDir, baseURL, itemSvc, logger)
}
