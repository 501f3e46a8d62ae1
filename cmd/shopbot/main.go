package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"shopbot/internal/bot"
	"shopbot/internal/config"
	"shopbot/internal/http/handlers"
	applog "shopbot/internal/log"
	"shopbot/internal/notify"
	"shopbot/internal/ratelimit"
	"shopbot/internal/store"
)

const (
	webhookMax    = 2
	webhookWindow = 30 * time.Minute
	sweepEvery    = time.Minute
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	st := store.Open(cfg.DataFile)

	tg, err := bot.NewTelegram(cfg.BotToken)
	if err != nil {
		log.Fatal(err)
	}
	applog.Event("bot.up", map[string]any{"username": tg.API.Self.UserName})

	relay := notify.NewRelay(tg, cfg.AdminChatID)
	machine := bot.NewMachine(st, tg, cfg.AdminChatID)

	// Admin conversation via long polling
	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 60
	updates := tg.API.GetUpdatesChan(updCfg)
	go func() {
		for upd := range updates {
			if msg, ok := bot.Inbound(upd); ok {
				machine.Handle(msg)
			}
		}
	}()

	webhookLimiter := ratelimit.New(webhookMax, webhookWindow)
	webhookLimiter.StartSweep(sweepEvery)

	app := fiber.New()

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// ---------- Static storefront ----------
	app.Static("/", cfg.PublicDir)

	// ---------- Routes ----------
	deps := handlers.NewDeps(st, tg, relay, webhookLimiter, cfg)

	api := app.Group("/api", limiter.New(limiter.Config{Max: 60, Expiration: time.Minute}))
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/photo/:fileId", deps.ProductHandler.Photo)
	api.Post("/order", deps.OrderHandler.Submit)

	app.Post("/telegram-webhook", deps.WebhookHandler.Receive)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal(err)
		}
	}()
	applog.Event("server.up", map[string]any{"port": cfg.Port})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	applog.Event("server.shutdown", nil)
	tg.API.StopReceivingUpdates()
	_ = app.Shutdown()
	webhookLimiter.Stop()
	relay.Close()
	if err := st.Flush(); err != nil {
		applog.EventError("shutdown.flush", err, nil)
	}
}
