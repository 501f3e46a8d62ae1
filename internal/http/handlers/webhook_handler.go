package handlers

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "shopbot/internal/log"
	"shopbot/internal/notify"
	"shopbot/internal/ratelimit"
	"shopbot/internal/validate"
)

const rateLimitedMessage = "Too many requests. Please try again later."

type WebhookHandler struct {
	Relay     *notify.Relay
	Limiter   *ratelimit.Limiter
	UploadDir string
}

// Receive serves POST /telegram-webhook: the contact-form intake, limited
// per client address with a fixed window.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	if !h.Limiter.Allow(c.IP()) {
		applog.Security(c, "rate.webhook.hit", nil)
		return fail(c, fiber.StatusTooManyRequests, rateLimitedMessage)
	}

	sub := notify.Submission{
		Name:        c.FormValue("name"),
		Email:       c.FormValue("email"),
		ProjectType: c.FormValue("project_type"),
		Price:       c.FormValue("price"),
		Details:     c.FormValue("details"),
		ContactInfo: c.FormValue("contact_info"),
	}

	var ok bool
	if sub.Name, ok = validate.Required(sub.Name); !ok {
		return fail(c, fiber.StatusBadRequest, "name is required")
	}
	if sub.Price, ok = validate.Required(sub.Price); !ok {
		return fail(c, fiber.StatusBadRequest, "price is required")
	}
	if sub.Details, ok = validate.Required(sub.Details); !ok {
		return fail(c, fiber.StatusBadRequest, "details are required")
	}
	if sub.Email != "" {
		if sub.Email, ok = validate.Email(sub.Email); !ok {
			return fail(c, fiber.StatusBadRequest, "invalid email")
		}
	}

	attachments, err := h.saveUploads(c)
	if err != nil {
		applog.Error(c, "webhook.upload", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not store attachments")
	}

	applog.Info(c, "webhook.receive", map[string]any{"attachments": len(attachments)})
	h.Relay.FormReceived(sub, attachments)
	return c.JSON(fiber.Map{"success": true, "message": "Request received, we will be in touch soon."})
}

// saveUploads spools multipart attachments into the upload dir. On any
// failure the files written so far are removed before reporting the error;
// on success the relay owns the cleanup.
func (h *WebhookHandler) saveUploads(c *fiber.Ctx) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil // urlencoded form, no attachments
	}
	var saved []string
	for _, header := range form.File["files"] {
		dst := filepath.Join(h.UploadDir, uuid.NewString()+filepath.Ext(header.Filename))
		if err := c.SaveFile(header, dst); err != nil {
			for _, path := range saved {
				os.Remove(path)
			}
			return nil, err
		}
		saved = append(saved, dst)
	}
	return saved, nil
}
