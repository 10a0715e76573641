package language

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
	"github.com/gdpillet/gdpillet-trailmates/internal/auth"
)

type updateRequest struct {
	Language string `json:"language" validate:"required,oneof=en fr it es"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	validate := validator.New()

	r.Get("/language", authMiddleware, func(c *fiber.Ctx) error {
		lang := svc.Resolve(c.UserContext(), auth.UserID(c), c.Get(fiber.HeaderAcceptLanguage))
		return c.JSON(fiber.Map{"language": lang, "supported": Supported})
	})

	r.Put("/language", authMiddleware, func(c *fiber.Ctx) error {
		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return apperror.Validation("invalid payload")
		}
		if err := validate.Struct(req); err != nil {
			return apperror.Validation("language must be one of en, fr, it, es")
		}
		if err := svc.Set(c.UserContext(), auth.UserID(c), req.Language); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"language": req.Language})
	})
}
