package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"chirp/internal/config"
	"chirp/internal/models"
	"chirp/internal/observability"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultUploadDir            = "./uploads"
	DefaultImageMaxUploadSizeMB = 5

	// UploadURLPrefix is the public path under which stored assets are served.
	UploadURLPrefix = "uploads"
)

// Asset kinds, used as storage subdirectories.
const (
	AssetKindPost   = "posts"
	AssetKindAvatar = "avatars"
)

// UploadImageInput is one uploaded file as received from the client.
type UploadImageInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// ImageResult reports what happened to one uploaded file. Exactly one of Ref
// (accepted) or Reason (rejected) is set.
type ImageResult struct {
	Filename string `json:"filename"`
	Accepted bool   `json:"accepted"`
	Ref      string `json:"ref,omitempty"`
	URL      string `json:"url,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Accepted builds the result for a stored file.
func Accepted(filename, ref, url string) ImageResult {
	return ImageResult{Filename: filename, Accepted: true, Ref: ref, URL: url}
}

// Rejected builds the result for a file that failed validation.
func Rejected(filename, reason string) ImageResult {
	return ImageResult{Filename: filename, Reason: reason}
}

// AssetStore validates and persists uploaded images and returns stable references.
type AssetStore interface {
	Validate(in UploadImageInput) error
	Store(ctx context.Context, kind string, in UploadImageInput) (string, error)
	Remove(ref string)
	URLFor(ref string) string
}

// AssetService stores uploads on local disk below uploadDir.
type AssetService struct {
	uploadDir          string
	assetHost          string
	maxUploadSizeBytes int64
}

// NewAssetService returns a new AssetService.
func NewAssetService(cfg *config.Config) *AssetService {
	uploadDir := DefaultUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	assetHost := ""

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
		assetHost = cfg.AssetHost
	}

	return &AssetService{
		uploadDir:          uploadDir,
		assetHost:          assetHost,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Validate checks size, sniffed MIME type and that the bytes decode as a
// supported image. Failures are ValidationErrors whose message is safe to return.
func (s *AssetService) Validate(in UploadImageInput) error {
	if len(in.Content) == 0 {
		return models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return models.NewValidationError("Invalid image type (allowed: jpeg, png, gif, webp)")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return models.NewValidationError("Unsupported image format")
	}

	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, decodedFormatToMime(format)) {
		return models.NewValidationError("Image content type mismatch")
	}
	return nil
}

// Store validates in and writes it under kind/, returning the stored reference.
func (s *AssetService) Store(_ context.Context, kind string, in UploadImageInput) (string, error) {
	if err := s.Validate(in); err != nil {
		observability.ImageUploads.WithLabelValues(kind, "rejected").Inc()
		return "", err
	}

	_, format, _ := image.DecodeConfig(bytes.NewReader(in.Content))
	name := uuid.NewString() + extensionFor(format)
	abs := filepath.Join(s.uploadDir, kind, name)

	if err := writeBytesToFile(abs, in.Content); err != nil {
		observability.ImageUploads.WithLabelValues(kind, "failed").Inc()
		return "", models.NewUpstreamError("Failed to store image", err)
	}

	observability.ImageUploads.WithLabelValues(kind, "stored").Inc()
	return path.Join(UploadURLPrefix, kind, name), nil
}

// Remove deletes a previously stored reference. Missing files are ignored.
func (s *AssetService) Remove(ref string) {
	abs, ok := s.localPath(ref)
	if !ok {
		return
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove stored asset", slog.String("ref", ref), slog.String("error", err.Error()))
	}
}

// URLFor materializes ref into a client-facing URL.
func (s *AssetService) URLFor(ref string) string {
	return MaterializeURL(s.assetHost, ref)
}

func (s *AssetService) localPath(ref string) (string, bool) {
	rel, ok := strings.CutPrefix(ref, UploadURLPrefix+"/")
	if !ok {
		return "", false
	}
	clean := path.Clean("/" + rel)
	if clean == "/" || strings.Contains(rel, "..") {
		return "", false
	}
	return filepath.Join(s.uploadDir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), true
}

// MaterializeURL applies the asset URL rule: empty stays empty, refs starting
// with "http" pass through, anything else is joined onto host.
func MaterializeURL(host, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return strings.TrimSuffix(host, "/") + "/" + strings.TrimPrefix(ref, "/")
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func extensionFor(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return ".jpg"
	case "png", "gif", "webp":
		return "." + strings.ToLower(format)
	default:
		return ""
	}
}

func writeBytesToFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}
