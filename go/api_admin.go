package giftingserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	adminmapper "github.com/Apurer/gifting-api/internal/domains/admins/adapters/http/mapper"
	adminsports "github.com/Apurer/gifting-api/internal/domains/admins/ports"
	apierrors "github.com/Apurer/gifting-api/internal/shared/errors"
)

// adminContextKey holds the authenticated admin username on the gin context.
const adminContextKey = "admin.username"

// AdminAPI serves admin authentication and guards admin routes.
type AdminAPI struct {
	service adminsports.Service
}

func NewAdminAPI(service adminsports.Service) AdminAPI {
	return AdminAPI{service: service}
}

// Post /api/admin/login
func (api *AdminAPI) Login(c *gin.Context) {
	var payload adminmapper.Login
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, adminmapper.FromLoginResult(result))
}

// Post /api/admin/logout
// Revokes the presented bearer token
func (api *AdminAPI) Logout(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
		return
	}
	if err := api.service.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequireAdmin rejects requests without a valid, unrevoked admin bearer token.
func (api *AdminAPI) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
			return
		}
		admin, err := api.service.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.Set(adminContextKey, admin.Username)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
