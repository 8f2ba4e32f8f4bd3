package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/infrastructure/config"
	"github.com/stockroute/backend/internal/infrastructure/logger"
	"github.com/stockroute/backend/internal/interfaces/http/dto"
	"github.com/stockroute/backend/internal/interfaces/http/handler"
	"github.com/stockroute/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the API handlers mounted by New
type Handlers struct {
	Auth      *handler.AuthHandler
	Health    *handler.HealthHandler
	User      *handler.UserHandler
	Geo       *handler.GeoHandler
	Category  *handler.CategoryHandler
	Product   *handler.ProductHandler
	Inventory *handler.InventoryHandler
	Client    *handler.ClientHandler
	Order     *handler.OrderHandler
	Sale      *handler.SaleHandler
	Stats     *handler.StatsHandler
}

// Options configure the engine built by New
type Options struct {
	HTTP   config.HTTPConfig
	Tokens middleware.TokenValidator
	// LoginLimiter throttles POST /auth/login per client IP. Nil disables it.
	LoginLimiter middleware.Limiter
	Tracing      middleware.TracingConfig
	Logger       *zap.Logger
}

// New builds the gin engine with the global middleware chain and every
// API route
func New(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(logger.RequestID())
	engine.Use(middleware.Tracing(opts.Tracing)...)
	engine.Use(
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(opts.HTTP),
	)
	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", c.GetString(middleware.RequestIDKey)))
	})

	Mount(engine.Group(APIPrefix), apiResources(opts, h, log)...)
	return engine
}

func apiResources(opts Options, h Handlers, log *zap.Logger) []*Resource {
	authn := middleware.JWTAuth(opts.Tokens, log)
	admin := middleware.RequireRoles(identity.RoleAdmin)
	adminOrSeller := middleware.RequireRoles(identity.RoleAdmin, identity.RoleSeller)
	field := middleware.RequireRoles(identity.RoleSeller, identity.RoleDelivery)
	anyRole := middleware.RequireRoles(identity.RoleAdmin, identity.RoleSeller, identity.RoleDelivery, identity.RoleInstant)

	login := []gin.HandlerFunc{h.Auth.Login}
	if opts.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimitByKey(opts.LoginLimiter, middleware.ClientIPKey("login"), log)}, login...)
	}

	return []*Resource{
		NewResource("/auth").
			POST("/login", login...),

		NewResource("/health").
			GET("", h.Health.Health),

		NewResource("/users").Use(authn, admin).
			POST("", h.User.Create).
			GET("", h.User.List),

		NewResource("/cities").Use(authn).
			POST("", admin, h.Geo.CreateCity).
			GET("", adminOrSeller, h.Geo.ListCities).
			DELETE("/:id", admin, h.Geo.DeleteCity),

		NewResource("/sectors").Use(authn).
			POST("", admin, h.Geo.CreateSector).
			GET("/:cityId/sectors", adminOrSeller, h.Geo.ListSectors).
			DELETE("/:id", admin, h.Geo.DeleteSector),

		NewResource("/categories").Use(authn).
			POST("", admin, h.Category.Create).
			GET("", anyRole, h.Category.List).
			DELETE("/:id", admin, h.Category.Delete),

		NewResource("/products").Use(authn).
			POST("", admin, h.Product.Create).
			GET("", anyRole, h.Product.List).
			PATCH("/adjust", admin, h.Inventory.Adjust).
			GET("/:id", anyRole, h.Product.GetByID).
			PUT("/:id", admin, h.Product.Update).
			POST("/:id/picture", admin, h.Product.UploadPicture).
			DELETE("/:id", admin, h.Product.Delete),

		NewResource("/supplies").Use(authn, admin).
			POST("", h.Inventory.AddSupplies),

		NewResource("/alerts").Use(authn, admin).
			GET("/low-stock", h.Inventory.LowStock).
			GET("/expiring", h.Inventory.Expiring),

		NewResource("/clients").Use(authn, field).
			POST("", h.Client.Create).
			GET("", h.Client.List).
			GET("/:id", h.Client.Get),

		NewResource("/orders").Use(authn, field).
			POST("", h.Order.Create).
			GET("", h.Order.List).
			GET("/:id", h.Order.Get).
			PATCH("/:id", h.Order.Update).
			DELETE("/:id", h.Order.Delete).
			POST("/:id/sale", h.Order.ConvertToSale),

		NewResource("/sales").Use(authn).
			POST("", middleware.RequireRoles(identity.RoleSeller), h.Sale.Create).
			GET("", anyRole, h.Sale.List).
			GET("/:id", anyRole, h.Sale.Get).
			PATCH("/:id", anyRole, h.Sale.Settle),

		NewResource("/instant-sales").Use(authn, middleware.RequireRoles(identity.RoleInstant)).
			POST("", h.Sale.CreateInstant),

		NewResource("/stats").Use(authn, anyRole).
			GET("", h.Stats.Summary).
			GET("/export", h.Stats.Export),
	}
}
