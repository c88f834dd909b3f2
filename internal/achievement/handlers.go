package achievement

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the catalog, award, and re-check endpoints. Browse
// endpoints are public; everything tied to a user runs behind auth.
func RegisterRoutes(app fiber.Router, svc *Service, catalog *Catalog, authMiddleware fiber.Handler) {
	app.Get("/achievements", func(c *fiber.Ctx) error {
		pref := c.Query("unit_preference")
		var (
			defs []Definition
			err  error
		)
		if pref == "" {
			defs, err = catalog.Active(c.Context())
		} else {
			defs, err = catalog.ForUnitPreference(c.Context(), pref)
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(defs)
	})

	app.Get("/achievements/recent", func(c *fiber.Ctx) error {
		awards, err := svc.Recent(c.Context(), c.QueryInt("limit", 20))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(awards)
	})

	app.Post("/achievements/check/:sessionID", authMiddleware, func(c *fiber.Ctx) error {
		awards, err := svc.EvaluateForSession(c.Context(), c.Params("sessionID"))
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"new_achievements": awards})
	})

	app.Get("/users/:id/achievements", authMiddleware, func(c *fiber.Ctx) error {
		awards, err := svc.Awards(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(awards)
	})

	app.Get("/users/:id/achievements/stats", authMiddleware, func(c *fiber.Ctx) error {
		stats, err := svc.UserStats(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)
	})
}
