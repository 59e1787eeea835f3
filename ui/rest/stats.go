package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AzielCF/az-telebox/core/config"
	domainUser "github.com/AzielCF/az-telebox/domains/user"
	"github.com/AzielCF/az-telebox/pkg/reaper"
	"github.com/AzielCF/az-telebox/pkg/updateworker"
	"github.com/AzielCF/az-telebox/pkg/utils"
)

type Stats struct {
	Users  domainUser.IUserRepository
	Pool   *updateworker.Pool
	Reaper *reaper.Reaper
}

func InitRestStats(app fiber.Router, users domainUser.IUserRepository, pool *updateworker.Pool, rp *reaper.Reaper) Stats {
	handler := Stats{
		Users:  users,
		Pool:   pool,
		Reaper: rp,
	}

	app.Get("/stats", handler.GetStats)

	return handler
}

func (h *Stats) GetStats(c *fiber.Ctx) error {
	count, err := h.Users.Count(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Stats retrieved",
		Results: map[string]any{
			"user_count":  count,
			"worker_pool": h.Pool.GetStats(),
			"reaper":      h.Reaper.Stats(),
			"settings":    config.GetAllSettings(),
		},
	})
}
