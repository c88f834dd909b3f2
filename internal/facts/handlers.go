package facts

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	app.Get("/users/:id/facts", authMiddleware, func(c *fiber.Ctx) error {
		facts, err := svc.Get(c.Context(), c.Params("id"), c.QueryBool("refresh", false))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(facts)
	})
}
