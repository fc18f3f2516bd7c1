package server

import (
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Subscribe handles POST /api/subscriptions
func (s *Server) Subscribe(c *fiber.Ctx) error {
	var req struct {
		TargetUserID uint `json:"targetUserId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	follow, err := s.followService.Follow(c.UserContext(), viewerID(c), req.TargetUserID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Subscribed successfully",
		"subscription": follow,
	})
}

// Unsubscribe handles DELETE /api/subscriptions/:userId
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.followService.Unfollow(c.UserContext(), viewerID(c), targetID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unsubscribed successfully"})
}

// CheckSubscription handles GET /api/subscriptions/check/:userId
func (s *Server) CheckSubscription(c *fiber.Ctx) error {
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	subscribed, err := s.followService.IsFollowing(c.UserContext(), viewerID(c), targetID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"subscribed": subscribed})
}
