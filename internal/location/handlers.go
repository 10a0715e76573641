package location

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/auth"
)

type errorReport struct {
	Code int `json:"code"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/location", authMiddleware, func(c *fiber.Ctx) error {
		loc, err := svc.Get(c.UserContext(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"location": loc})
	})

	r.Put("/location", authMiddleware, func(c *fiber.Ctx) error {
		var coords Coordinates
		if err := c.BodyParser(&coords); err != nil {
			return apperror.Validation("invalid payload")
		}
		loc, err := svc.Update(c.UserContext(), auth.UserID(c), coords)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"location": loc})
	})

	r.Delete("/location", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Clear(c.UserContext(), auth.UserID(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/location/error", func(c *fiber.Ctx) error {
		var req errorReport
		if err := c.BodyParser(&req); err != nil {
			return apperror.Validation("invalid payload")
		}
		return c.JSON(Report(req.Code))
	})
}
