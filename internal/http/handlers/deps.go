package handlers

import (
	"shopbot/internal/bot"
	"shopbot/internal/config"
	"shopbot/internal/notify"
	"shopbot/internal/ratelimit"
	"shopbot/internal/services"
	"shopbot/internal/store"
)

type Deps struct {
	ProductHandler *ProductHandler
	OrderHandler   *OrderHandler
	WebhookHandler *WebhookHandler
}

func NewDeps(st *store.Store, msgr bot.Messenger, relay *notify.Relay, limiter *ratelimit.Limiter, cfg config.Config) *Deps {
	catalogSvc := services.NewCatalogService(st)
	orderSvc := services.NewOrderService(st)

	return &Deps{
		ProductHandler: &ProductHandler{Catalog: catalogSvc, Files: msgr},
		OrderHandler:   &OrderHandler{Orders: orderSvc, Relay: relay, Store: st},
		WebhookHandler: &WebhookHandler{Relay: relay, Limiter: limiter, UploadDir: cfg.UploadDir},
	}
}
