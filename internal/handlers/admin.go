package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/catalog"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/services"
	"github.com/example/etailor/internal/store"
	"github.com/example/etailor/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	store   store.Store
	catalog *catalog.Store
	orders  *services.OrderService
	stats   *services.StatsService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(s store.Store, catalog *catalog.Store, orders *services.OrderService, stats *services.StatsService) *AdminHandler {
	return &AdminHandler{store: s, catalog: catalog, orders: orders, stats: stats}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.stats.Get(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, stats)
}

// ListAllOrders returns all orders with pagination and filtering.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListOrders(c.UserContext(), identity, nil, services.OrderQuery{
		Status: models.OrderStatus(c.Query("status")),
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	})
	if err != nil {
		return err
	}
	return respondPage(c, orders, pg.Page, pg.Limit, total)
}

// ListCustomers returns every customer with their order count and spend.
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.store.ListCustomers(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, customers)
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// UpdateOrderStatus moves an order along its lifecycle.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), identity, id, req.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, order)
}

// ReloadCatalog refreshes the in-memory catalog from the store.
func (h *AdminHandler) ReloadCatalog(c *fiber.Ctx) error {
	if err := h.catalog.Reload(c.UserContext()); err != nil {
		return err
	}

	products := h.catalog.ListProducts()
	log.Printf("[Admin] catalog reloaded with %d active products", len(products))
	return respond(c, fiber.StatusOK, fiber.Map{"products": len(products)})
}
