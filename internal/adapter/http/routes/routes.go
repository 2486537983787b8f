package routes

import (
	"context"
	"net/http"
	"time"

	_ "retail_backoffice/docs"
	"retail_backoffice/internal/adapter/http/handlers"
	"retail_backoffice/internal/adapter/http/middleware"
	"retail_backoffice/internal/adapter/mcp"
	"retail_backoffice/internal/infrastructure/backoffice"
	"retail_backoffice/internal/infrastructure/config"
	"retail_backoffice/internal/infrastructure/logger"
	"retail_backoffice/internal/infrastructure/payments"
	"retail_backoffice/internal/usecase"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	PathHealth   = "/healthz"
	PathSwagger  = "/swagger"
	PathMCP      = "/mcp"
	PathCheckout = "/checkout"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	User    *handlers.UserHandler
	Product *handlers.ProductHandler
	Cart    *handlers.CartHandler
	Order   *handlers.OrderHandler
	Health  *handlers.HealthHandler
}

// Run will start the server
func Run() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	repos, err := NewRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open the %s store: %v", cfg.StoreDriver, err)
	}

	userUseCase := usecase.NewUserUseCase(repos.Users)
	productUseCase := usecase.NewProductUseCase(repos.Products, cfg.ProductSearchLimit)
	cartUseCase := usecase.NewCartUseCase(repos.Carts, repos.Users, repos.Products, usecase.StockPolicy(cfg.StockPolicy))
	orderUseCase := usecase.NewOrderUseCase(
		repos.Orders, repos.Carts, repos.Users, repos.Products,
		newPaymentLinkProvider(cfg),
		payments.NewCheckoutLinkBuilder(cfg.CheckoutFrontendURL, cfg.PublicBaseURL, payments.ModeExpanded),
	)

	if cfg.SeedDemoData {
		if err := usecase.SeedDemoData(ctx, userUseCase, productUseCase); err != nil {
			log.Errorf("[seed] demo data failed err=%v", err)
		}
	}

	// The agent tools reach the backoffice through its own HTTP API.
	toolServer := mcp.NewToolServer(usecase.NewToolsUseCase(backoffice.NewClient(cfg), cfg.ProductSearchLimit))

	router := NewRouter(cfg, Handlers{
		User:    handlers.NewUserHandler(userUseCase),
		Product: handlers.NewProductHandler(productUseCase),
		Cart:    handlers.NewCartHandler(cartUseCase),
		Order:   handlers.NewOrderHandler(orderUseCase),
		Health:  handlers.NewHealthHandler(cfg.StoreDriver),
	}, toolServer.NewHTTPHandler())

	log.Printf("[http] listening port=%s store=%s", cfg.Port, cfg.StoreDriver)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func newPaymentLinkProvider(cfg config.Config) interfaces.IPaymentLinkProvider {
	checkout := payments.NewCheckoutLinkBuilder(cfg.CheckoutFrontendURL, cfg.PublicBaseURL, cfg.PaymentURLMode)
	if cfg.PaymentLinkProvider != config.PaymentProviderMercadoPago {
		return checkout
	}
	mp, err := payments.NewMercadoPagoLinkProvider(cfg.MercadoPagoAccessToken, cfg.MercadoPagoCurrency, checkout)
	if err != nil {
		log.Warnf("[payment] Mercado Pago not configured, using checkout links: %v", err)
		return checkout
	}
	return mp
}

// NewRouter builds the engine: middlewares first, then public and API routes.
// mcpHandler may be nil.
func NewRouter(cfg config.Config, h Handlers, mcpHandler http.Handler) *gin.Engine {
	router := gin.New()
	setMiddlewares(router, cfg)

	router.GET(PathHealth, h.Health.Health)
	router.GET(PathSwagger+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET(PathCheckout+"/:order_id", h.Order.CheckoutRedirect)

	root := router.Group("")
	addUserRoutes(root, h.User)
	addProductRoutes(root, h.Product)
	addCartRoutes(root, h.Cart)
	addOrderRoutes(root, h.Order)

	if mcpHandler != nil {
		router.Any(PathMCP, gin.WrapH(mcpHandler))
	}
	return router
}

func setMiddlewares(router *gin.Engine, cfg config.Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSAllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.APIKeyHeader},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	router.Use(middleware.APIKey(cfg.APIKey, PathHealth, PathCheckout+"/", PathSwagger+"/"))
}
