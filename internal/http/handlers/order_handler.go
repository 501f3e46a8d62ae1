package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shopbot/internal/log"
	"shopbot/internal/notify"
	"shopbot/internal/services"
	"shopbot/internal/store"
	"shopbot/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
	Relay  *notify.Relay
	Store  *store.Store
}

// Submit serves POST /api/order. Validation failure rejects the whole
// order with a 400; once stock is decremented the response is a success
// no matter what happens to the notification.
func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	var req services.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		applog.Security(c, "order.badbody", map[string]any{"error": err.Error()})
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	name, ok := validate.Required(req.Name)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "name is required")
	}
	contact, ok := validate.Required(req.Contact)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "contact is required")
	}
	req.Name, req.Contact = name, contact

	order, err := h.Orders.Place(req)
	if err != nil {
		applog.Security(c, "order.reject", map[string]any{"error": err.Error()})
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	applog.Info(c, "order.place", map[string]any{"order_id": order.ID, "items": len(order.Items)})
	h.Relay.OrderPlaced(order, h.Store.Products())
	return c.JSON(fiber.Map{"success": true})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}
