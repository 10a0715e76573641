package event

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
)

func RegisterRoutes(r fiber.Router, svc *Service, publicURL string) {
	r.Get("/", func(c *fiber.Ctx) error {
		events, err := svc.List(c.Context())
		if err != nil {
			return err
		}
		groups := GroupByDate(events, c.Query("location", All), c.Query("activity", All), time.Now())
		return c.JSON(fiber.Map{"groups": groups, "total": len(events)})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		e, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(e)
	})

	r.Get("/:id/qr", func(c *fiber.Ctx) error {
		e, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		png, err := ShareQRCode(publicURL, e.ID, c.QueryInt("size", 256))
		if err != nil {
			return apperror.Validation(err.Error())
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	})
}
