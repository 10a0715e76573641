package wizard

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/auth"
)

type OrganizerLookup interface {
	Organizer(ctx context.Context, userID string) (auth.Organizer, error)
}

// RegisterRoutes mounts the draft endpoints. Every route needs a signed-in user.
func RegisterRoutes(r fiber.Router, svc *Service, organizers OrganizerLookup, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		state, err := svc.Open(c.UserContext(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(state)
	})

	r.Patch("/", authMiddleware, func(c *fiber.Ctx) error {
		var p Patch
		if err := c.BodyParser(&p); err != nil {
			return apperror.Validation("invalid payload")
		}
		state, err := svc.Update(c.UserContext(), auth.UserID(c), p)
		if err != nil {
			return err
		}
		return c.JSON(state)
	})

	r.Post("/next", authMiddleware, func(c *fiber.Ctx) error {
		state, err := svc.Next(c.UserContext(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(state)
	})

	r.Post("/previous", authMiddleware, func(c *fiber.Ctx) error {
		state, err := svc.Previous(c.UserContext(), auth.UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(state)
	})

	r.Delete("/", authMiddleware, func(c *fiber.Ctx) error {
		state, err := svc.Close(c.UserContext(), auth.UserID(c), c.QueryBool("confirm"))
		if err != nil {
			return err
		}
		return c.JSON(state)
	})

	r.Post("/submit", authMiddleware, func(c *fiber.Ctx) error {
		userID := auth.UserID(c)
		organizer, err := organizers.Organizer(c.UserContext(), userID)
		if err != nil {
			return err
		}
		created, err := svc.Submit(c.UserContext(), userID, organizer)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})
}
