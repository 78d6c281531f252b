package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/catalog"
	"github.com/example/etailor/internal/customization"
	"github.com/example/etailor/internal/handlers"
	"github.com/example/etailor/internal/middleware"
	"github.com/example/etailor/internal/services"
	"github.com/example/etailor/internal/store"
)

// Deps carries everything the HTTP API is built from.
type Deps struct {
	Store        store.Store
	Catalog      *catalog.Store
	Registry     *customization.Registry
	Orders       *services.OrderService
	Measurements *services.MeasurementService
	Designs      *services.DesignService
	Stats        *services.StatsService
	Receipts     *services.ReceiptService

	JWTSecret string
	TokenTTL  time.Duration

	// UploadDir is served under /uploads when designs are stored locally.
	UploadDir string
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	var onSignUp func()
	if deps.Stats != nil {
		onSignUp = deps.Stats.Invalidate
	}
	authHandler := handlers.NewAuthHandler(deps.Store, deps.JWTSecret, deps.TokenTTL, onSignUp)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	customizationHandler := handlers.NewCustomizationHandler(deps.Registry, deps.Measurements, deps.Designs, deps.Orders)
	designHandler := handlers.NewDesignHandler(deps.Designs)
	measurementHandler := handlers.NewMeasurementHandler(deps.Measurements)
	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.Receipts)
	profileHandler := handlers.NewProfileHandler(deps.Store)
	adminHandler := handlers.NewAdminHandler(deps.Store, deps.Catalog, deps.Orders, deps.Stats)

	if deps.UploadDir != "" {
		app.Static("/uploads", deps.UploadDir)
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := deps.Store.Ping(c.UserContext()); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	})

	api := app.Group("/api")
	requireAuth := middleware.AuthMiddleware(deps.JWTSecret)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", requireAuth, authHandler.Me)

	// Catalog routes
	api.Get("/products", catalogHandler.ListProducts)
	api.Get("/products/:id", catalogHandler.GetProduct)
	api.Get("/products/:id/fabrics", catalogHandler.ListFabrics)
	api.Get("/style-options", catalogHandler.StyleOptions)

	// Protected routes
	protected := api.Group("", requireAuth)

	protected.Post("/designs", designHandler.Upload)

	sessions := protected.Group("/customizations")
	sessions.Post("/", customizationHandler.Open)
	sessions.Get("/:id", customizationHandler.Get)
	sessions.Delete("/:id", customizationHandler.Cancel)
	sessions.Put("/:id/product", customizationHandler.SelectProduct)
	sessions.Put("/:id/fabric", customizationHandler.SelectFabric)
	sessions.Put("/:id/quantity", customizationHandler.SetQuantity)
	sessions.Put("/:id/measurement", customizationHandler.SelectMeasurement)
	sessions.Put("/:id/design", customizationHandler.AttachDesign)
	sessions.Delete("/:id/design", customizationHandler.DetachDesign)
	sessions.Put("/:id/options/:category", customizationHandler.SetOption)
	sessions.Delete("/:id/options/:category", customizationHandler.ClearOption)
	sessions.Post("/:id/submit", customizationHandler.Submit)

	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Get("/orders/:id/receipt", orderHandler.Receipt)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	protected.Get("/measurements", measurementHandler.List)
	protected.Post("/measurements", measurementHandler.Create)
	protected.Put("/measurements/:id", measurementHandler.Update)
	protected.Delete("/measurements/:id", measurementHandler.Delete)

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Get("/customers", adminHandler.ListCustomers)
	admin.Put("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.Post("/catalog/reload", adminHandler.ReloadCatalog)
}

// NewApp builds the fiber application with the shared error envelope.
func NewApp(name string, bodyLimit int) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    bodyLimit,
	})
}
