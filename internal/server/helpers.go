package server

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"unicode"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxImagesPerPost = 10

// Pagination holds parsed page/limit query parameters for the following feed.
type Pagination struct {
	Page  int
	Limit int
}

// parsePagination extracts page and limit. Out-of-range values are left for
// the feed service to normalize.
func parsePagination(c *fiber.Ctx) Pagination {
	return Pagination{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 0),
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "userId" -> "Invalid user ID").
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// viewerID returns the authenticated user id or 0 for anonymous requests.
func viewerID(c *fiber.Ctx) uint {
	id, _ := middleware.UserID(c)
	return id
}

// readUpload loads one multipart file into memory as an upload input.
func readUpload(userID uint, fh *multipart.FileHeader) (service.UploadImageInput, error) {
	src, err := fh.Open()
	if err != nil {
		return service.UploadImageInput{}, err
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return service.UploadImageInput{}, err
	}
	return service.UploadImageInput{
		UserID:      userID,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// userView is the account representation returned to its owner.
type userView struct {
	*models.User
	Avatar string `json:"avatar"`
}

func (s *Server) toUserView(u *models.User) userView {
	return userView{User: u, Avatar: service.MaterializeURL(s.config.AssetHost, u.Avatar)}
}
