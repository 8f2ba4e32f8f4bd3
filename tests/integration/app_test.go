package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/stockroute/backend/internal/application/catalog"
	geoapp "github.com/stockroute/backend/internal/application/geo"
	identityapp "github.com/stockroute/backend/internal/application/identity"
	inventoryapp "github.com/stockroute/backend/internal/application/inventory"
	partnerapp "github.com/stockroute/backend/internal/application/partner"
	salesapp "github.com/stockroute/backend/internal/application/sales"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/stockroute/backend/internal/infrastructure/auth"
	"github.com/stockroute/backend/internal/infrastructure/cache"
	"github.com/stockroute/backend/internal/infrastructure/config"
	"github.com/stockroute/backend/internal/infrastructure/event"
	"github.com/stockroute/backend/internal/infrastructure/persistence"
	"github.com/stockroute/backend/internal/infrastructure/spreadsheet"
	"github.com/stockroute/backend/internal/interfaces/http/handler"
	"github.com/stockroute/backend/internal/interfaces/http/router"
	"github.com/stockroute/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminUsername = "admin"
	adminPassword = "admin-password"
)

// testApp is the full API over a real database, wired without redis
type testApp struct {
	api    testutil.APIClient
	events *testutil.EventRecorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	tdb := NewTestDB(t)
	log := zap.NewNop()
	db := tdb.DB

	userRepo := persistence.NewGormUserRepository(db)
	geoRepo := persistence.NewGormGeoRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	clientRepo := persistence.NewGormClientRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	saleRepo := persistence.NewGormSaleRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "integration-test-secret-0123456789",
		AccessTokenExpiration: time.Hour,
		Issuer:                "stockroute-test",
	})
	userService := identityapp.NewUserService(userRepo, geoRepo, log)
	clientService := partnerapp.NewClientService(clientRepo, geoRepo, userRepo, log)
	saleBuilder := salesapp.NewSaleBuilder(txScope, 5, log)

	bus := event.NewInMemoryEventBus(log)
	recorder := testutil.NewEventRecorder(sales.EventTypeSaleCreated)
	bus.Subscribe(recorder)
	bus.Subscribe(salesapp.NewSaleCreatedHandler(nil, clientService, false, log))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	saleBuilder.SetEventPublisher(bus)

	idempotency := cache.NewMemoryIdempotencyStore(time.Hour)

	created, err := userService.SeedAdmin(context.Background(), adminUsername, adminPassword)
	require.NoError(t, err)
	require.True(t, created)

	engine := router.New(router.Options{
		HTTP:   config.HTTPConfig{MaxBodySize: 1 << 20},
		Tokens: jwtService,
		Logger: log,
	}, router.Handlers{
		Auth:     handler.NewAuthHandler(identityapp.NewAuthService(userRepo, jwtService, log)),
		Health:   handler.NewHealthHandler(map[string]handler.HealthCheck{"database": tdb.Ping}),
		User:     handler.NewUserHandler(userService),
		Geo:      handler.NewGeoHandler(geoapp.NewGeoService(geoRepo, persistence.NewGormGeoTransactionScope(db), log)),
		Category: handler.NewCategoryHandler(catalogapp.NewCategoryService(categoryRepo)),
		Product:  handler.NewProductHandler(catalogapp.NewProductService(productRepo, categoryRepo)),
		Inventory: handler.NewInventoryHandler(
			inventoryapp.NewSupplyService(txScope, 5, log),
			inventoryapp.NewAlertService(productRepo, inventoryapp.AlertDefaults{LowStockThreshold: 10, ExpiringWithinDays: 14, ExpiringMinQty: 1}),
		),
		Client: handler.NewClientHandler(clientService),
		Order:  handler.NewOrderHandler(partnerapp.NewOrderService(orderRepo, clientRepo, saleBuilder, log)),
		Sale: handler.NewSaleHandler(saleBuilder, salesapp.NewSaleQueryService(saleRepo),
			salesapp.NewSettlementProcessor(txScope, nil, salesapp.DefaultLockTTL, 5, log), idempotency),
		Stats: handler.NewStatsHandler(salesapp.NewStatsService(saleRepo, spreadsheet.NewWriter())),
	})

	return &testApp{api: testutil.APIClient{Handler: engine}, events: recorder}
}

func (a *testApp) login(t *testing.T, username, password string) testutil.APIClient {
	t.Helper()
	w := a.api.Do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": username, "password": password}, nil)
	res := testutil.MustDecode[identityapp.LoginResult](t, w, http.StatusOK)
	require.NotEmpty(t, res.AccessToken)
	return a.api.WithToken(res.AccessToken)
}

// fixture is a seller with one sector, a client and a stocked product
type fixture struct {
	admin     testutil.APIClient
	seller    testutil.APIClient
	sellerID  uuid.UUID
	sectorID  uuid.UUID
	clientID  uuid.UUID
	productID uuid.UUID
}

func (a *testApp) seed(t *testing.T, stock int64) fixture {
	t.Helper()
	f := fixture{admin: a.login(t, adminUsername, adminPassword)}

	city := testutil.MustDecode[geoapp.CityResponse](t,
		f.admin.Do(t, http.MethodPost, "/api/v1/cities", map[string]string{"name": "Rabat"}, nil), http.StatusCreated)
	sector := testutil.MustDecode[geoapp.SectorResponse](t,
		f.admin.Do(t, http.MethodPost, "/api/v1/sectors", map[string]any{"city_id": city.ID, "name": "Agdal"}, nil), http.StatusCreated)
	f.sectorID = sector.ID

	seller := testutil.MustDecode[identityapp.UserInfo](t,
		f.admin.Do(t, http.MethodPost, "/api/v1/users", map[string]any{
			"username": "seller1", "password": "seller-password", "role": "seller", "sector_ids": []uuid.UUID{sector.ID},
		}, nil), http.StatusCreated)
	f.sellerID = seller.ID
	f.seller = a.login(t, "seller1", "seller-password")

	category := testutil.MustDecode[catalogapp.CategoryResponse](t,
		f.admin.Do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Drinks"}, nil), http.StatusCreated)
	product := testutil.MustDecode[catalogapp.ProductResponse](t,
		f.admin.Do(t, http.MethodPost, "/api/v1/products", map[string]any{
			"category_id": category.ID, "name": "Water 1L", "unit_price": decimal.NewFromInt(5),
		}, nil), http.StatusCreated)
	f.productID = product.ID

	if stock > 0 {
		testutil.MustDecode[[]inventoryapp.BatchResponse](t,
			f.admin.Do(t, http.MethodPost, "/api/v1/supplies", []map[string]any{{
				"product_id": product.ID, "quantity": stock, "expiring_at": time.Now().AddDate(1, 0, 0).UTC(),
			}}, nil), http.StatusCreated)
	}

	client := testutil.MustDecode[partnerapp.ClientResponse](t,
		f.seller.Do(t, http.MethodPost, "/api/v1/clients", map[string]any{
			"name": "Epicerie Agdal", "location": "Rue 1", "type_of_business": "grocery",
			"phone_number": "0600000000", "sector_id": sector.ID,
		}, nil), http.StatusCreated)
	f.clientID = client.ID
	return f
}

func (f fixture) stock(t *testing.T) int64 {
	t.Helper()
	p := testutil.MustDecode[catalogapp.ProductResponse](t,
		f.admin.Do(t, http.MethodGet, "/api/v1/products/"+f.productID.String(), nil, nil), http.StatusOK)
	return p.CurrentStock
}

func (f fixture) saleBody(qty int64) map[string]any {
	return map[string]any{
		"client_id": f.clientID,
		"items":     []map[string]any{{"product_id": f.productID, "sold_by": "unit", "quantity": qty}},
	}
}
