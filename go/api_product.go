package giftingserver

import (
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/http/mapper"
	catalogdomain "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/gifting-api/internal/domains/catalog/ports"
	apierrors "github.com/Apurer/gifting-api/internal/shared/errors"
)

// imageRoute is where uploaded product images are served from.
const imageRoute = "/api/products/images/"

// ProductAPI serves catalog products and their images.
type ProductAPI struct {
	service catalogports.Service
	images  catalogports.ImageStore
}

// NewProductAPI creates a ProductAPI. Image routes answer 404 when images is nil.
func NewProductAPI(service catalogports.Service, images catalogports.ImageStore) ProductAPI {
	return ProductAPI{service: service, images: images}
}

// Get /api/products
// Lists active products, optionally filtered by categoryId, type and customizable
func (api *ProductAPI) ListProducts(c *gin.Context) {
	var filter catalogports.ProductFilter
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			responder.BadRequest(c, "invalid categoryId: "+raw)
			return
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("type"); raw != "" {
		productType, err := catalogdomain.ParseProductType(raw)
		if err != nil {
			responder.BadRequest(c, err.Error())
			return
		}
		filter.Type = &productType
	}
	if raw := c.Query("customizable"); raw != "" {
		customizable, err := strconv.ParseBool(raw)
		if err != nil {
			responder.BadRequest(c, "invalid customizable: "+raw)
			return
		}
		filter.CustomizableOnly = customizable
	}
	api.listProducts(c, filter)
}

// Get /api/products/category/:categoryId
func (api *ProductAPI) ListProductsByCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	api.listProducts(c, catalogports.ProductFilter{CategoryID: &id})
}

// Get /api/products/type/:productType
func (api *ProductAPI) ListProductsByType(c *gin.Context) {
	productType, err := catalogdomain.ParseProductType(c.Param("productType"))
	if err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	api.listProducts(c, catalogports.ProductFilter{Type: &productType})
}

// Get /api/products/customizable
func (api *ProductAPI) ListCustomizableProducts(c *gin.Context) {
	api.listProducts(c, catalogports.ProductFilter{CustomizableOnly: true})
}

func (api *ProductAPI) listProducts(c *gin.Context, filter catalogports.ProductFilter) {
	result, err := api.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromProductProjectionList(result))
}

// Get /api/products/:id
// Returns the product with its customization options parsed
func (api *ProductAPI) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromProductProjection(product, true))
}

// Post /api/products
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload catalogmapper.MutationProduct
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input, err := catalogmapper.ToProductInput(payload)
	if err != nil {
		responder.BadRequest(c, "stockQuantity must be an integer or null")
		return
	}
	created, err := api.service.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromProductProjection(created, true))
}

// Put /api/products/:id
func (api *ProductAPI) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload catalogmapper.MutationProduct
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input, err := catalogmapper.ToProductInput(payload)
	if err != nil {
		responder.BadRequest(c, "stockQuantity must be an integer or null")
		return
	}
	updated, err := api.service.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromProductProjection(updated, true))
}

// Delete /api/products/:id
// Deactivates a product
func (api *ProductAPI) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/products/upload-image
// Stores a multipart "image" upload and returns its public URL
func (api *ProductAPI) UploadImage(c *gin.Context) {
	if api.images == nil {
		responder.Respond(c, apierrors.ErrNotFound.WithDetail("image uploads are disabled"))
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		responder.BadRequest(c, catalogports.ErrEmptyImage.Error())
		return
	}
	file, err := header.Open()
	if err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	defer file.Close()

	name, err := api.images.Save(c.Request.Context(), file)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"imageUrl": path.Join(imageRoute, name),
		"fileName": name,
	})
}

// Get /api/products/images/:fileName
func (api *ProductAPI) ServeImage(c *gin.Context) {
	if api.images == nil {
		responder.Respond(c, apierrors.ErrNotFound.WithDetail("image uploads are disabled"))
		return
	}
	name := c.Param("fileName")
	file, err := api.images.Path(name)
	if err != nil {
		responder.NotFound(c, "Image", name)
		return
	}
	c.File(file)
}
