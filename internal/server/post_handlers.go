package server

import (
	"strings"

	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetGlobalFeed handles GET /api/posts. Anonymous readers get isLiked=false.
func (s *Server) GetGlobalFeed(c *fiber.Ctx) error {
	posts, err := s.feedService.GlobalFeed(c.UserContext(), viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetOwnFeed handles GET /api/posts/me
func (s *Server) GetOwnFeed(c *fiber.Ctx) error {
	posts, err := s.feedService.OwnFeed(c.UserContext(), viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowingFeed handles GET /api/posts/following?page=&limit=
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	p := parsePagination(c)
	page, err := s.feedService.FollowingFeed(c.UserContext(), viewerID(c), p.Page, p.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(page)
}

// GetLikedFeed handles GET /api/posts/liked
func (s *Server) GetLikedFeed(c *fiber.Ctx) error {
	posts, err := s.feedService.LikedFeed(c.UserContext(), viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts. Multipart requests carry "content" and
// any number of "images" files; JSON requests carry content only.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := viewerID(c)
	in := service.CreatePostInput{UserID: userID}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid multipart body"))
		}
		if values := form.Value["content"]; len(values) > 0 {
			in.Content = values[0]
		}
		files := form.File["images"]
		if len(files) > maxImagesPerPost {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Too many images"))
		}
		for _, fh := range files {
			upload, err := readUpload(userID, fh)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Unable to read uploaded file"))
			}
			in.Images = append(in.Images, upload)
		}
	} else {
		var req struct {
			Content string `json:"content"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Content = req.Content
	}

	result, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	enriched := s.feedService.Enrich(c.UserContext(), []models.Post{*result.Post}, userID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post":   enriched[0],
		"images": result.Images,
	})
}

// DeletePost handles DELETE /api/posts/:id. Only the author may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), viewerID(c), postID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
