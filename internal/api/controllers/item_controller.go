package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shoply/internal/models/request_models"
	"shoply/internal/repositories"
	"shoply/internal/services"
	"shoply/pkg/utils"
)

const maxUploadBytes = 5 << 20

type ItemController struct {
	itemService   services.ItemServiceInterface
	uploadService services.UploadServiceInterface
}

func NewItemController(
	itemService services.ItemServiceInterface,
	uploadService services.UploadServiceInterface,
) *ItemController {
	return &ItemController{
		itemService:   itemService,
		uploadService: uploadService,
	}
}

// ListItems godoc
// @Summary List catalog items
// @Tags Items
// @Produce json
// @Param category query string false "Filter by category"
// @Param search query string false "Search in name and description"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse
// @Router /items [get]
func (i *ItemController) ListItems(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := repositories.ItemFilter{Page: page, PageSize: pageSize}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}

	items, err := i.itemService.ListItems(c.Request.Context(), filter)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, items, "")
}

func (i *ItemController) GetItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	item, err := i.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, item, "")
}

// CreateItem godoc
// @Summary Create a catalog item
// @Tags Items
// @Accept json
// @Produce json
// @Param request body request_models.CreateItemRequest true "Item payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /items [post]
func (i *ItemController) CreateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req request_models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	item, err := i.itemService.CreateItem(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, item, "Item created")
}

func (i *ItemController) UpdateItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req request_models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	item, err := i.itemService.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, item, "Item updated")
}

func (i *ItemController) DeleteItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := i.itemService.DeleteItem(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Item deleted")
}

// UploadImage godoc
// @Summary Upload an item image
// @Tags Items
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Item id"
// @Param file formData file true "Image file (jpeg or png)"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /items/{id}/image [post]
func (i *ItemController) UploadImage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Missing file field")
		return
	}
	if header.Size > maxUploadBytes {
		utils.RespondError(c, http.StatusBadRequest, "File too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unreadable file")
		return
	}
	defer file.Close()

	url, err := i.uploadService.SaveItemImage(c.Request.Context(), id, header.Filename, file)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"image_url": url}, "Image uploaded")
}

func (i *ItemController) DeleteImage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := i.uploadService.DeleteItemImage(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Image removed")
}
