package session

import (
	"errors"

	"backend-rucktracker/internal/geometry"
	"backend-rucktracker/internal/gpx"

	"github.com/gofiber/fiber/v2"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrActiveSessionExists):
		return fiber.StatusConflict
	case errors.Is(err, ErrManualMetrics):
		return fiber.StatusBadRequest
	case errors.Is(err, geometry.ErrInsufficientData):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.UserID, _ = c.Locals("user_id").(string)
		if req.UserID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "user_id required")
		}
		sess, err := svc.Create(c.Context(), req)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	})

	r.Post("/:id/start", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		sess, err := svc.Start(c.Context(), c.Params("id"), userID)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(sess)
	})

	r.Post("/:id/samples", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			Samples []geometry.Sample `json:"samples"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		sum, err := svc.Ingest(c.Context(), c.Params("id"), req.Samples)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(sum)
	})

	r.Post("/:id/pause", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Pause(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(fiber.Map{"status": "paused"})
	})

	r.Post("/:id/resume", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Resume(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(fiber.Map{"status": "in_progress"})
	})

	r.Post("/:id/complete", authMiddleware, func(c *fiber.Ctx) error {
		var override *Metrics
		if len(c.Body()) > 0 {
			override = &Metrics{}
			if err := c.BodyParser(override); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		sess, err := svc.Complete(c.Context(), c.Params("id"), override)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(sess)
	})

	r.Post("/:id/cancel", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Cancel(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(fiber.Map{"status": "cancelled"})
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		sessions, err := svc.List(c.Context(), userID)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(sessions)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(sess)
	})

	r.Get("/:id/export.gpx", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		samples, err := svc.Samples(c.Context(), sess.ID)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		doc, err := gpx.Marshal("ruck "+sess.ID, samples)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/gpx+xml")
		return c.Send(doc)
	})
}
