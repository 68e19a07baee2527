package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shoply/pkg/utils"
)

const (
	maxImageDimension = 1024
	thumbDimension    = 256
)

type UploadServiceInterface interface {
	SaveItemImage(ctx context.Context, itemID uuid.UUID, filename string, file io.Reader) (string, error)
	DeleteItemImage(ctx context.Context, itemID uuid.UUID) error
}

type UploadService struct {
	baseDir string
	baseURL string
	itemSvc ItemServiceInterface
	logger  *zap.Logger
}

func NewUploadService(baseDir, baseURL string, itemSvc ItemServiceInterface, logger *zap.Logger) UploadServiceInterface {
	return &UploadService{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		itemSvc: itemSvc,
		logger:  logger,
	}
}

// SaveItemImage decodes, downscales and re-encodes the upload. Re-encoding
// strips whatever bytes came after the image data in the original file.
func (s *UploadService) SaveItemImage(ctx context.Context, itemID uuid.UUID, filename string, file io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", utils.ErrUnsupportedImage
	}

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return "", utils.ErrUnsupportedImage
	}
	img = imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)

	dir := filepath.Join(s.baseDir, "items")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s%s", itemID, ext)
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		return "", err
	}

	thumb := imaging.Fit(img, thumbDimension, thumbDimension, imaging.Lanczos)
	thumbPath := filepath.Join(dir, fmt.Sprintf("%s_thumb%s", itemID, ext))
	if err := imaging.Save(thumb, thumbPath); err != nil {
		s.logger.Warn("thumbnail save failed",
			zap.String("item_id", itemID.String()),
			zap.Error(err))
	}

	url := fmt.Sprintf("%s/uploads/items/%s", s.baseURL, name)
	if err := s.itemSvc.SetItemImage(ctx, itemID, url); err != nil {
		return "", err
	}
	return url, nil
}

// DeleteItemImage clears the item's image reference and removes the files.
// The stored URL does not record the extension, so every candidate is tried.
func (s *UploadService) DeleteItemImage(ctx context.Context, itemID uuid.UUID) error {
	if err := s.itemSvc.SetItemImage(ctx, itemID, ""); err != nil {
		return err
	}

	dir := filepath.Join(s.baseDir, "items")
	for _, ext := range []string{".jpg", ".jpeg", ".png"} {
		for _, name := range []string{
			fmt.Sprintf("%s%s", itemID, ext),
			fmt.Sprintf("%s_thumb%s", itemID, ext),
		} {
			if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("image file removal failed",
					zap.String("item_id", itemID.String()),
					zap.Error(err))
			}
		}
	}
	return nil
}
