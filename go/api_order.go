package giftingserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/gifting-api/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/Apurer/gifting-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/gifting-api/internal/domains/orders/ports"
)

// OrderAPI wires HTTP transport with the orders bounded context.
type OrderAPI struct {
	service  ordersports.Service
	location *time.Location
}

// NewOrderAPI creates an OrderAPI. Delivery dates without an offset are read in loc.
func NewOrderAPI(service ordersports.Service, loc *time.Location) OrderAPI {
	if loc == nil {
		loc = time.Local
	}
	return OrderAPI{service: service, location: loc}
}

// Post /api/orders/create
// Places a guest order
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload ordermapper.CreateOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input, err := ordermapper.ToCreateOrderInput(payload, api.location)
	if err != nil {
		responder.ValidationFailed(c, map[string]string{"deliveryDate": err.Error()})
		return
	}
	created, err := api.service.CreateOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromProjection(created))
}

// Get /api/orders
// Lists every order, newest first
func (api *OrderAPI) ListOrders(c *gin.Context) {
	result, err := api.service.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjectionList(result))
}

// Get /api/orders/:id
func (api *OrderAPI) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := api.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(order))
}

// Get /api/orders/order-number/:orderNumber
func (api *OrderAPI) GetOrderByNumber(c *gin.Context) {
	order, err := api.service.GetByOrderNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(order))
}

// Get /api/orders/status/:status
func (api *OrderAPI) ListOrdersByStatus(c *gin.Context) {
	result, err := api.service.GetByStatus(c.Request.Context(), orderdomain.Status(c.Param("status")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjectionList(result))
}

// Put /api/orders/:id/status
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload ordermapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := api.service.UpdateStatus(c.Request.Context(), id, orderdomain.Status(payload.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
}
