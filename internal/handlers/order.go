package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/services"
	"github.com/example/etailor/internal/utils"
)

// OrderHandler manages the caller's order endpoints.
type OrderHandler struct {
	orders   *services.OrderService
	receipts *services.ReceiptService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService, receipts *services.ReceiptService) *OrderHandler {
	return &OrderHandler{orders: orders, receipts: receipts}
}

// ListOrders returns the caller's orders, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	orders, total, err := h.orders.ListOrders(c.UserContext(), identity, &identity.ID, services.OrderQuery{
		Status: models.OrderStatus(c.Query("status")),
		Limit:  pg.Limit,
		Offset: pg.Offset,
	})
	if err != nil {
		return err
	}
	return respondPage(c, orders, pg.Page, pg.Limit, total)
}

// GetOrder returns one of the caller's orders. Admins may read any order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.GetOrder(c.UserContext(), identity, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, order)
}

// Receipt renders the order as a PDF download.
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.GetOrder(c.UserContext(), identity, id)
	if err != nil {
		return err
	}

	pdf, err := h.receipts.Render(order)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, order.OrderNumber))
	return c.Send(pdf)
}
