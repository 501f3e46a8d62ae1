package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"

	"shopbot/internal/bot"
	applog "shopbot/internal/log"
	"shopbot/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Files   bot.Messenger
}

// List serves GET /api/products.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.Catalog.List())
}

// Photo serves GET /api/photo/:fileId by streaming the file from the chat
// transport. Any failure along the way is a plain 404.
func (h *ProductHandler) Photo(c *fiber.Ctx) error {
	fileID := c.Params("fileId")
	if fileID == "" {
		return c.Status(fiber.StatusNotFound).SendString("photo not found")
	}
	url, err := h.Files.FileURL(fileID)
	if err != nil {
		applog.Error(c, "photo.resolve", err, map[string]any{"file_id": fileID})
		return c.Status(fiber.StatusNotFound).SendString("photo not found")
	}
	if err := proxy.Do(c, url); err != nil {
		applog.Error(c, "photo.fetch", err, map[string]any{"file_id": fileID})
		return c.Status(fiber.StatusNotFound).SendString("photo not found")
	}
	c.Response().Header.Del(fiber.HeaderServer)
	return nil
}
