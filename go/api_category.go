package giftingserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

// CategoryAPI serves storefront categories.
type CategoryAPI struct {
	service catalogports.Service
}

func NewCategoryAPI(service catalogports.Service) CategoryAPI {
	return CategoryAPI{service: service}
}

// Get /api/categories
// Lists active categories by display order
func (api *CategoryAPI) ListCategories(c *gin.Context) {
	result, err := api.service.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromCategoryProjectionList(result))
}

// Get /api/categories/:id
func (api *CategoryAPI) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := api.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromCategoryProjection(category))
}

// Post /api/categories
func (api *CategoryAPI) CreateCategory(c *gin.Context) {
	var payload catalogmapper.MutationCategory
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	created, err := api.service.CreateCategory(c.Request.Context(), catalogmapper.ToCategoryInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromCategoryProjection(created))
}

// Put /api/categories/:id
func (api *CategoryAPI) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload catalogmapper.MutationCategory
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.UpdateCategory(c.Request.Context(), id, catalogmapper.ToCategoryInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromCategoryProjection(updated))
}

// Delete /api/categories/:id
// Deactivates a category
func (api *CategoryAPI) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
