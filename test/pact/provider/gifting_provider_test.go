//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/gifting-api/test/pact"

	giftingserver "github.com/Apurer/gifting-api/go"
	adminauth "github.com/Apurer/gifting-api/internal/domains/admins/adapters/auth"
	adminmemory "github.com/Apurer/gifting-api/internal/domains/admins/adapters/memory"
	adminsapp "github.com/Apurer/gifting-api/internal/domains/admins/application"
	catalogmemory "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/gifting-api/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/gifting-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/gifting-api/internal/domains/catalog/domain"
	ordermemory "github.com/Apurer/gifting-api/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/gifting-api/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/gifting-api/internal/domains/orders/application"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestGiftingProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateProductInStock: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedProduct(t, pacttest.ExistingProductID, 5)
			}
			return nil, nil
		},
		pacttest.StateProductLowStock: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedProduct(t, pacttest.ExistingProductID, 1)
			}
			return nil, nil
		},
		pacttest.StateProductMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves a freshly wired in-memory stack that each provider state can replace.
type contractProviderApp struct {
	mu      sync.RWMutex
	router  http.Handler
	catalog *catalogmemory.Store
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		router := app.router
		app.mu.RUnlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()

	store := catalogmemory.NewStore()
	catalogService := catalogobs.New(catalogapp.NewService(store.Categories(), store.Products(), store.HamperBoxes()))
	orderRepo := ordermemory.NewRepository(store)
	orderService := orderobs.New(ordersapp.NewService(orderRepo, orderRepo))

	tokens, err := adminauth.NewJWTManager(adminauth.JWTConfig{Issuer: "gifting-api-pact", Secret: strings.Repeat("p", 32)})
	require.NoError(t, err)
	adminService := adminsapp.NewService(adminmemory.NewRepository(), adminmemory.NewSessionStore(), tokens)

	handlers := giftingserver.ApiHandleFunctions{
		HealthAPI:    giftingserver.NewHealthAPI("pact", nil),
		CategoryAPI:  giftingserver.NewCategoryAPI(catalogService),
		ProductAPI:   giftingserver.NewProductAPI(catalogService, nil),
		HamperBoxAPI: giftingserver.NewHamperBoxAPI(catalogService),
		OrderAPI:     giftingserver.NewOrderAPI(orderService, time.UTC),
		AdminAPI:     giftingserver.NewAdminAPI(adminService),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = giftingserver.NewRouterWithGinEngine(router, handlers)

	a.mu.Lock()
	a.router = router
	a.catalog = store
	a.mu.Unlock()
}

func (a *contractProviderApp) seedProduct(t testing.TB, id int64, stock int) {
	t.Helper()
	a.mu.RLock()
	store := a.catalog
	a.mu.RUnlock()

	_, err := store.Products().Save(context.Background(), &catalogdomain.Product{
		ID:            id,
		Name:          pacttest.ExistingProductName,
		Price:         decimal.RequireFromString(pacttest.ExistingProductPrice),
		Type:          catalogdomain.ProductTypeCustomisedItem,
		StockQuantity: &stock,
		Active:        true,
	})
	require.NoError(t, err)
}
