package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return apperror.Validation("invalid payload")
		}
		user, tokens, err := svc.Register(c.UserContext(), req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "tokens": tokens})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return apperror.Validation("email and password required")
		}
		_, resp, err := svc.Login(c.UserContext(), req)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	})

	r.Post("/refresh", func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return apperror.Validation("refresh_token required")
		}

		userID, err := svc.ValidateRefreshToken(c.UserContext(), req.RefreshToken)
		if err != nil {
			return err
		}

		resp, err := svc.GenerateTokens(c.UserContext(), userID)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	})

	r.Get("/jwt/verify", func(c *fiber.Ctx) error {
		token := parseBearer(c.Get("Authorization"))
		if token == "" {
			return apperror.Clone(apperror.ErrUnauthorized, "missing bearer token")
		}

		userID, err := svc.ValidateAccessToken(token)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrUnauthorized.Code, apperror.ErrUnauthorized.Status, "token invalid")
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})

	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		user, err := svc.Me(c.UserContext(), UserID(c))
		if err != nil {
			return err
		}
		return c.JSON(user)
	})
}
