package giftingserver

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Admin routes require a valid admin bearer token.
	Admin bool
	// Middleware runs before HandlerFunc and after the admin guard.
	Middleware []gin.HandlerFunc
}

// ApiHandleFunctions bundles every API the router serves.
type ApiHandleFunctions struct {
	HealthAPI    HealthAPI
	CategoryAPI  CategoryAPI
	ProductAPI   ProductAPI
	HamperBoxAPI HamperBoxAPI
	OrderAPI     OrderAPI
	AdminAPI     AdminAPI
}

type routerConfig struct {
	serviceName    string
	allowedOrigins []string
	orderRateLimit int
	logger         *slog.Logger
}

// RouterOption customises NewRouter.
type RouterOption func(*routerConfig)

// WithTracing adds otelgin spans named after serviceName.
func WithTracing(serviceName string) RouterOption {
	return func(cfg *routerConfig) {
		cfg.serviceName = serviceName
	}
}

// WithAllowedOrigins enables CORS for origins. "*" allows any origin without credentials.
func WithAllowedOrigins(origins ...string) RouterOption {
	return func(cfg *routerConfig) {
		cfg.allowedOrigins = origins
	}
}

// WithOrderRateLimit caps order creation per client IP. Non-positive values disable the limit.
func WithOrderRateLimit(perMinute int) RouterOption {
	return func(cfg *routerConfig) {
		cfg.orderRateLimit = perMinute
	}
}

// WithRequestLogger logs one record per request and every 5xx cause.
func WithRequestLogger(logger *slog.Logger) RouterOption {
	return func(cfg *routerConfig) {
		cfg.logger = logger
	}
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, opts ...RouterOption) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	return NewRouterWithGinEngine(router, handleFunctions, opts...)
}

// NewRouterWithGinEngine adds the middleware stack and routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, opts ...RouterOption) *gin.Engine {
	cfg := routerConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.serviceName != "" {
		router.Use(otelgin.Middleware(cfg.serviceName))
	}
	router.Use(requestLogger(cfg.logger))
	if len(cfg.allowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.allowedOrigins)))
	}
	router.NoRoute(func(c *gin.Context) {
		responder.NotFound(c, "Route", c.Request.URL.Path)
	})

	guard := handleFunctions.AdminAPI.RequireAdmin()
	orderLimiter := newIPRateLimiter(cfg.orderRateLimit, time.Now)
	for _, route := range getRoutes(handleFunctions, orderLimiter) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := make([]gin.HandlerFunc, 0, len(route.Middleware)+2)
		if route.Admin {
			handlers = append(handlers, guard)
		}
		handlers = append(handlers, route.Middleware...)
		handlers = append(handlers, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc answers routes without an implementation.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func getRoutes(h ApiHandleFunctions, orderLimiter *ipRateLimiter) []Route {
	return []Route{
		{Name: "Root", Method: http.MethodGet, Pattern: "/api", HandlerFunc: h.HealthAPI.Root},
		{Name: "Health", Method: http.MethodGet, Pattern: "/api/health", HandlerFunc: h.HealthAPI.Health},
		{Name: "Ping", Method: http.MethodGet, Pattern: "/api/health/ping", HandlerFunc: h.HealthAPI.Ping},
		{Name: "DetailedHealth", Method: http.MethodGet, Pattern: "/api/health/detailed", HandlerFunc: h.HealthAPI.Detailed},

		{Name: "Login", Method: http.MethodPost, Pattern: "/api/admin/login", HandlerFunc: h.AdminAPI.Login},
		{Name: "LoginAlias", Method: http.MethodPost, Pattern: "/api/auth/login", HandlerFunc: h.AdminAPI.Login},
		{Name: "Logout", Method: http.MethodPost, Pattern: "/api/admin/logout", HandlerFunc: h.AdminAPI.Logout, Admin: true},

		{Name: "ListCategories", Method: http.MethodGet, Pattern: "/api/categories", HandlerFunc: h.CategoryAPI.ListCategories},
		{Name: "GetCategory", Method: http.MethodGet, Pattern: "/api/categories/:id", HandlerFunc: h.CategoryAPI.GetCategory},
		{Name: "CreateCategory", Method: http.MethodPost, Pattern: "/api/categories", HandlerFunc: h.CategoryAPI.CreateCategory, Admin: true},
		{Name: "UpdateCategory", Method: http.MethodPut, Pattern: "/api/categories/:id", HandlerFunc: h.CategoryAPI.UpdateCategory, Admin: true},
		{Name: "DeleteCategory", Method: http.MethodDelete, Pattern: "/api/categories/:id", HandlerFunc: h.CategoryAPI.DeleteCategory, Admin: true},

		{Name: "ListProducts", Method: http.MethodGet, Pattern: "/api/products", HandlerFunc: h.ProductAPI.ListProducts},
		{Name: "ListCustomizableProducts", Method: http.MethodGet, Pattern: "/api/products/customizable", HandlerFunc: h.ProductAPI.ListCustomizableProducts},
		{Name: "ListProductsByCategory", Method: http.MethodGet, Pattern: "/api/products/category/:categoryId", HandlerFunc: h.ProductAPI.ListProductsByCategory},
		{Name: "ListProductsByType", Method: http.MethodGet, Pattern: "/api/products/type/:productType", HandlerFunc: h.ProductAPI.ListProductsByType},
		{Name: "ServeImage", Method: http.MethodGet, Pattern: "/api/products/images/:fileName", HandlerFunc: h.ProductAPI.ServeImage},
		{Name: "GetProduct", Method: http.MethodGet, Pattern: "/api/products/:id", HandlerFunc: h.ProductAPI.GetProduct},
		{Name: "CreateProduct", Method: http.MethodPost, Pattern: "/api/products", HandlerFunc: h.ProductAPI.CreateProduct, Admin: true},
		{Name: "UploadImage", Method: http.MethodPost, Pattern: "/api/products/upload-image", HandlerFunc: h.ProductAPI.UploadImage, Admin: true},
		{Name: "UpdateProduct", Method: http.MethodPut, Pattern: "/api/products/:id", HandlerFunc: h.ProductAPI.UpdateProduct, Admin: true},
		{Name: "DeleteProduct", Method: http.MethodDelete, Pattern: "/api/products/:id", HandlerFunc: h.ProductAPI.DeleteProduct, Admin: true},

		{Name: "ListHamperBoxes", Method: http.MethodGet, Pattern: "/api/hamper-boxes", HandlerFunc: h.HamperBoxAPI.ListHamperBoxes},
		{Name: "GetHamperBox", Method: http.MethodGet, Pattern: "/api/hamper-boxes/:id", HandlerFunc: h.HamperBoxAPI.GetHamperBox},
		{Name: "CreateHamperBox", Method: http.MethodPost, Pattern: "/api/hamper-boxes", HandlerFunc: h.HamperBoxAPI.CreateHamperBox, Admin: true},
		{Name: "UpdateHamperBox", Method: http.MethodPut, Pattern: "/api/hamper-boxes/:id", HandlerFunc: h.HamperBoxAPI.UpdateHamperBox, Admin: true},
		{Name: "DeleteHamperBox", Method: http.MethodDelete, Pattern: "/api/hamper-boxes/:id", HandlerFunc: h.HamperBoxAPI.DeleteHamperBox, Admin: true},

		{Name: "CreateOrder", Method: http.MethodPost, Pattern: "/api/orders/create", HandlerFunc: h.OrderAPI.CreateOrder, Middleware: []gin.HandlerFunc{orderLimiter.Middleware()}},
		{Name: "ListOrders", Method: http.MethodGet, Pattern: "/api/orders", HandlerFunc: h.OrderAPI.ListOrders, Admin: true},
		{Name: "GetOrderByNumber", Method: http.MethodGet, Pattern: "/api/orders/order-number/:orderNumber", HandlerFunc: h.OrderAPI.GetOrderByNumber, Admin: true},
		{Name: "ListOrdersByStatus", Method: http.MethodGet, Pattern: "/api/orders/status/:status", HandlerFunc: h.OrderAPI.ListOrdersByStatus, Admin: true},
		{Name: "GetOrderByID", Method: http.MethodGet, Pattern: "/api/orders/:id", HandlerFunc: h.OrderAPI.GetOrderByID, Admin: true},
		{Name: "UpdateOrderStatus", Method: http.MethodPut, Pattern: "/api/orders/:id/status", HandlerFunc: h.OrderAPI.UpdateOrderStatus, Admin: true},
	}
}
