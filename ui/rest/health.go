package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AzielCF/az-telebox/core/config"
	domainUser "github.com/AzielCF/az-telebox/domains/user"
	"github.com/AzielCF/az-telebox/pkg/utils"
)

type Health struct {
	Users domainUser.IUserRepository
}

func InitRestHealth(app fiber.Router, users domainUser.IUserRepository) Health {
	handler := Health{Users: users}

	app.Get("/health", handler.GetStatus)

	return handler
}

// GetStatus probes the user store, since every inbound message depends on it.
func (h *Health) GetStatus(c *fiber.Ctx) error {
	storageOK := true
	if _, err := h.Users.Count(c.UserContext()); err != nil {
		storageOK = false
	}

	status := 200
	code := "SUCCESS"
	if !storageOK {
		status = 503
		code = "STORAGE_UNAVAILABLE"
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: "Health status retrieved",
		Results: map[string]any{
			"version": config.Global.App.Version,
			"storage": storageOK,
		},
	})
}
