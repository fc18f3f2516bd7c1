package server

import (
	"log/slog"
	"time"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/service"
	"chirp/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Birthdate string `json:"birthdate"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var birthdate *time.Time
	if req.Birthdate != "" {
		b, err := validation.ParseBirthdate(req.Birthdate)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		birthdate = &b
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Birthdate: birthdate,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  s.toUserView(user),
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  s.toUserView(user),
	})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (s *Server) Logout(c *fiber.Ctx) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	if err := s.tokens.Revoke(c.UserContext(), principal); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "token revocation failed",
			slog.String("error", err.Error()))
		return models.RespondWithError(c, fiber.StatusBadGateway,
			models.NewUpstreamError("Unable to revoke token", err))
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}
