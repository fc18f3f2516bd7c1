package server

import (
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	like, count, err := s.likeService.Like(c.UserContext(), viewerID(c), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Post liked successfully",
		"likeId":    like.ID,
		"likeCount": count,
	})
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.likeService.Unlike(c.UserContext(), viewerID(c), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Post unliked successfully",
		"likeCount": count,
	})
}

// CheckLike handles GET /api/posts/:id/like
func (s *Server) CheckLike(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	like, err := s.likeService.Status(c.UserContext(), viewerID(c), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	var likeID *uint
	if like != nil {
		likeID = &like.ID
	}
	return c.JSON(fiber.Map{
		"liked":  like != nil,
		"likeId": likeID,
	})
}

// GetLikeCount handles GET /api/posts/:id/likes
func (s *Server) GetLikeCount(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.likeService.Count(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"likeCount": count})
}
