package server

import (
	"chirp/internal/models"
	"chirp/internal/service"
	"chirp/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	userID := viewerID(c)
	user, err := s.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.toUserView(user))
}

// UpdateMe handles PUT /api/users/me. Omitted fields are left unchanged.
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		Bio       *string `json:"bio"`
		Birthdate *string `json:"birthdate"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateProfileInput{
		UserID:   viewerID(c),
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
	}
	if req.Birthdate != nil {
		b, err := validation.ParseBirthdate(*req.Birthdate)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		in.Birthdate = &b
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(s.toUserView(user))
}

// UploadAvatar handles POST /api/users/me/avatar (multipart field "avatar").
// The previous avatar file is removed once the new reference is saved.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	userID := viewerID(c)
	fh, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	upload, err := readUpload(userID, fh)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	if err := s.assets.Validate(upload); err != nil {
		return models.RespondWithAppError(c, err)
	}

	current, err := s.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	ref, err := s.assets.Store(c.UserContext(), service.AssetKindAvatar, upload)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID: userID,
		Avatar: &ref,
	})
	if err != nil {
		s.assets.Remove(ref)
		return models.RespondWithAppError(c, err)
	}
	if current.Avatar != "" && current.Avatar != ref {
		s.assets.Remove(current.Avatar)
	}

	return c.JSON(s.toUserView(user))
}

// GetProfile handles GET /api/users/:id/profile
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.feedService.ProfileFeed(c.UserContext(), id, viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	followers, err := s.followService.Followers(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"followers": followers})
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.followService.Following(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetFollowStats handles GET /api/users/:id/stats
func (s *Server) GetFollowStats(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	stats, err := s.followService.Stats(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(stats)
}
