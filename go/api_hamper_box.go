package giftingserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/gifting-api/internal/domains/catalog/ports"
)

// HamperBoxAPI serves the boxes offered by the hamper builder.
type HamperBoxAPI struct {
	service catalogports.Service
}

func NewHamperBoxAPI(service catalogports.Service) HamperBoxAPI {
	return HamperBoxAPI{service: service}
}

// Get /api/hamper-boxes
func (api *HamperBoxAPI) ListHamperBoxes(c *gin.Context) {
	result, err := api.service.ListHamperBoxes(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromHamperBoxProjectionList(result))
}

// Get /api/hamper-boxes/:id
func (api *HamperBoxAPI) GetHamperBox(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	box, err := api.service.GetHamperBox(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromHamperBoxProjection(box))
}

// Post /api/hamper-boxes
func (api *HamperBoxAPI) CreateHamperBox(c *gin.Context) {
	var payload catalogmapper.MutationHamperBox
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	created, err := api.service.CreateHamperBox(c.Request.Context(), catalogmapper.ToHamperBoxInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromHamperBoxProjection(created))
}

// Put /api/hamper-boxes/:id
func (api *HamperBoxAPI) UpdateHamperBox(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload catalogmapper.MutationHamperBox
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.UpdateHamperBox(c.Request.Context(), id, catalogmapper.ToHamperBoxInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromHamperBoxProjection(updated))
}

// Delete /api/hamper-boxes/:id
// Deactivates a hamper box
func (api *HamperBoxAPI) DeleteHamperBox(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteHamperBox(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
