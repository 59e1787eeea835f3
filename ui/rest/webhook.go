package rest

import (
	"context"
	"crypto/subtle"
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-telebox/infrastructure/telegram"
	"github.com/AzielCF/az-telebox/pkg/updateworker"
	"github.com/AzielCF/az-telebox/usecase"
)

type Webhook struct {
	Dispatcher *usecase.Dispatcher
	Pool       *updateworker.Pool
	Secret     string
}

func InitRestWebhook(app fiber.Router, dispatcher *usecase.Dispatcher, pool *updateworker.Pool, secret string) Webhook {
	handler := Webhook{
		Dispatcher: dispatcher,
		Pool:       pool,
		Secret:     secret,
	}

	app.Get("/", handler.Liveness)
	app.Post("/webhook/:secret", handler.HandleUpdate)

	return handler
}

func (h *Webhook) Liveness(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// HandleUpdate accepts one Telegram update. Processing happens on the worker
// pool after the response is written; Telegram always gets 200 for a valid
// secret so it never retries an update we already took ownership of.
func (h *Webhook) HandleUpdate(c *fiber.Ctx) error {
	secret := c.Params("secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.Secret)) != 1 {
		return c.Status(fiber.StatusForbidden).SendString("Invalid Request")
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		logrus.WithError(err).Warn("[WEBHOOK] Discarding malformed update payload")
		return c.SendString("OK")
	}

	in, ok := telegram.ToInbound(update)
	if !ok {
		return c.SendString("OK")
	}

	dispatcher := h.Dispatcher
	h.Pool.Dispatch(updateworker.UpdateJob{
		ChatID: in.ChatID,
		Handler: func(ctx context.Context) error {
			return dispatcher.Dispatch(ctx, in)
		},
	})

	return c.SendString("OK")
}
